// Copyright 2026 OpenBarter Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SubscriberQueueSize = 20
	AsyncQueueSize      = 1000
	AsyncWorkerCount    = 4
)

type EventType string

type SubscriberId int

type HandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// Subscriber is the delivery abstraction used by the bus. Deliver may
// block. Close must be safe to call more than once.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

type asyncEvent struct {
	eventType EventType
	event     Event
}

type Bus struct {
	subscribers map[EventType]map[SubscriberId]Subscriber
	metrics     *busMetrics
	lastSubId   SubscriberId
	mu          sync.RWMutex
	logger      *slog.Logger

	asyncQueue chan asyncEvent
	asyncWg    sync.WaitGroup
	stopCh     chan struct{}
	stopped    bool
	stopMu     sync.RWMutex
}

// NewBus creates an event bus with the async worker pool running
func NewBus(promRegistry prometheus.Registerer, logger *slog.Logger) *Bus {
	b := &Bus{
		subscribers: make(map[EventType]map[SubscriberId]Subscriber),
		logger:      logger,
		asyncQueue:  make(chan asyncEvent, AsyncQueueSize),
		stopCh:      make(chan struct{}),
	}
	if promRegistry != nil {
		b.metrics = newBusMetrics(promRegistry)
	}
	for range AsyncWorkerCount {
		b.asyncWg.Add(1)
		go b.asyncWorker()
	}
	return b
}

func (b *Bus) asyncWorker() {
	defer b.asyncWg.Done()
	for {
		select {
		case <-b.stopCh:
			return
		case ae, ok := <-b.asyncQueue:
			if !ok {
				return
			}
			b.Publish(ae.eventType, ae.event)
		}
	}
}

// channelSubscriber adapts a Go channel to the Subscriber interface
type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{
		ch: make(chan Event, buffer),
	}
}

func (c *channelSubscriber) Deliver(evt Event) (err error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		// Already closed, drop the event
		return nil
	}
	// Hold the read lock for the duration of the send so Close waits
	// for in-flight sends
	defer c.mu.RUnlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel deliver panic: %v", r)
		}
	}()
	c.ch <- evt
	return nil
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Subscribe registers a channel-backed subscriber for the given event type
func (b *Bus) Subscribe(eventType EventType) (SubscriberId, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	chSub := newChannelSubscriber(SubscriberQueueSize)
	subId := b.lastSubId + 1
	b.lastSubId = subId
	if _, ok := b.subscribers[eventType]; !ok {
		b.subscribers[eventType] = make(map[SubscriberId]Subscriber)
	}
	b.subscribers[eventType][subId] = chSub
	if b.metrics != nil {
		b.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId, chSub.ch
}

// SubscribeFunc registers a callback for the given event type. The
// callback runs on a dedicated goroutine that exits when the
// subscription is removed or the bus is stopped.
func (b *Bus) SubscribeFunc(
	eventType EventType,
	handlerFunc HandlerFunc,
) SubscriberId {
	subId, evtCh := b.Subscribe(eventType)
	go func() {
		for {
			evt, ok := <-evtCh
			if !ok {
				return
			}
			handlerFunc(evt)
		}
	}()
	return subId
}

// Unsubscribe removes an existing subscriber and closes its channel
func (b *Bus) Unsubscribe(eventType EventType, subId SubscriberId) {
	b.mu.Lock()
	var subToClose Subscriber
	if evtTypeSubs, ok := b.subscribers[eventType]; ok {
		if sub, ok2 := evtTypeSubs[subId]; ok2 {
			subToClose = sub
			delete(evtTypeSubs, subId)
			if len(evtTypeSubs) == 0 {
				delete(b.subscribers, eventType)
			}
			if b.metrics != nil {
				b.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
			}
		}
	}
	b.mu.Unlock()
	if subToClose != nil {
		subToClose.Close()
	}
}

// Publish delivers an event to all subscribers of the given type. A
// subscriber whose Deliver fails (or panics) is unregistered so a
// single bad consumer cannot wedge the bus.
func (b *Bus) Publish(eventType EventType, evt Event) {
	type subItem struct {
		id  SubscriberId
		sub Subscriber
	}
	b.mu.RLock()
	subs := b.subscribers[eventType]
	subList := make([]subItem, 0, len(subs))
	for id, sub := range subs {
		subList = append(subList, subItem{id: id, sub: sub})
	}
	b.mu.RUnlock()
	for _, item := range subList {
		var deliverErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					deliverErr = fmt.Errorf("subscriber deliver panic: %v", r)
				}
			}()
			deliverErr = item.sub.Deliver(evt)
		}()
		if deliverErr != nil {
			b.Unsubscribe(eventType, item.id)
			if b.metrics != nil {
				b.metrics.deliveryErrors.WithLabelValues(string(eventType)).
					Inc()
			}
			if b.logger != nil {
				b.logger.Debug(
					"event delivery error",
					"type", eventType,
					"error", deliverErr,
				)
			}
		}
	}
	if b.metrics != nil {
		b.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

// PublishAsync enqueues an event for delivery without blocking on
// subscribers. Returns false if the bus is stopped or the queue is full.
func (b *Bus) PublishAsync(eventType EventType, evt Event) bool {
	b.stopMu.RLock()
	if b.stopped {
		b.stopMu.RUnlock()
		return false
	}
	b.stopMu.RUnlock()
	select {
	case b.asyncQueue <- asyncEvent{eventType: eventType, event: evt}:
		return true
	default:
		if b.logger != nil {
			b.logger.Warn(
				"async event queue full, dropping event",
				"type", eventType,
			)
		}
		if b.metrics != nil {
			b.metrics.deliveryErrors.WithLabelValues(string(eventType)).Inc()
		}
		return false
	}
}

// Stop drains the async workers and closes all subscriber channels so
// SubscribeFunc goroutines exit cleanly
func (b *Bus) Stop() {
	b.stopMu.Lock()
	wasStopped := b.stopped
	b.stopped = true
	b.stopMu.Unlock()
	if !wasStopped {
		close(b.stopCh)
		b.asyncWg.Wait()
	}
	b.mu.Lock()
	subsCopy := b.subscribers
	b.subscribers = make(map[EventType]map[SubscriberId]Subscriber)
	b.mu.Unlock()
	for _, evtTypeSubs := range subsCopy {
		for _, sub := range evtTypeSubs {
			sub.Close()
		}
	}
	if b.metrics != nil {
		b.metrics.subscribers.Reset()
	}
}
