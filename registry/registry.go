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

package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openbarter/barter/custody"
	"github.com/openbarter/barter/database"
	"github.com/openbarter/barter/event"
	"github.com/openbarter/barter/ledger"
)

type RegistryConfig struct {
	Logger       *slog.Logger
	EventBus     *event.Bus
	PromRegistry prometheus.Registerer
	Database     *database.Database
	Ledger       ledger.Ledger
	Custody      custody.Coordinator
}

// Registry owns the proposal table and the proposal lifecycle. All
// mutating operations are serialized under a single mutex, which
// gives every call the same total-order, all-or-nothing semantics a
// sequential transaction log would.
type Registry struct {
	config   RegistryConfig
	logger   *slog.Logger
	eventBus *event.Bus
	db       *database.Database
	ledger   ledger.Ledger
	custody  custody.Coordinator
	metrics  struct {
		proposalsCreated   prometheus.Counter
		proposalsCompleted prometheus.Counter
		proposalsRejected  prometheus.Counter
		proposalsOpen      prometheus.Gauge
	}
	counter uint64
	admin   ledger.Address
	mutex   sync.Mutex
}

// NewRegistry creates a proposal registry, restoring the ID counter
// and admin grant from the database. In direct custody mode it also
// registers the escrow receive hook with the asset ledger.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	r := &Registry{
		config:   cfg,
		logger:   cfg.Logger,
		eventBus: cfg.EventBus,
		db:       cfg.Database,
		ledger:   cfg.Ledger,
		custody:  cfg.Custody,
	}
	if r.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		r.logger = r.logger.With("component", "registry")
	}
	// The counter only ever increments and rows are never deleted, so
	// the highest stored ID restores it exactly
	maxId, err := r.db.MaxProposalId(nil)
	if err != nil {
		return nil, err
	}
	r.counter = maxId
	adminAddr, err := r.db.GetRoleGrant(RoleAdmin, nil)
	if err != nil {
		return nil, err
	}
	r.admin = ledger.Address(adminAddr)
	r.initMetrics(cfg.PromRegistry)
	if r.custody.TakesCustody() {
		r.ledger.OnReceive(r.custody.Holder(), r.handleReceive)
	}
	return r, nil
}

func (r *Registry) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	r.metrics.proposalsCreated = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "barter_proposals_created_total",
			Help: "total swap proposals created",
		},
	)
	r.metrics.proposalsCompleted = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "barter_proposals_completed_total",
			Help: "total swap proposals completed",
		},
	)
	r.metrics.proposalsRejected = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "barter_proposals_rejected_total",
			Help: "total swap proposals cancelled or rejected",
		},
	)
	r.metrics.proposalsOpen = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "barter_proposals_open",
			Help: "swap proposals awaiting the proposee",
		},
	)
	// Restore the open gauge from stored state
	if proposals, err := r.db.GetProposals(nil); err == nil {
		open := 0
		for _, p := range proposals {
			if Status(p.Status).Open() {
				open++
			}
		}
		r.metrics.proposalsOpen.Set(float64(open))
	}
}

// ProposeSwap creates a swap proposal offering proposerAsset for
// proposeeAsset. The caller must currently own proposerAsset; the
// proposee is resolved as the current owner of proposeeAsset. In
// direct custody mode the proposer's asset is pulled into escrow,
// which requires a prior approval of the escrow address.
func (r *Registry) ProposeSwap(
	ctx context.Context,
	caller ledger.Address,
	proposerAsset ledger.AssetRef,
	proposeeAsset ledger.AssetRef,
) (*Proposal, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	owner, err := r.ledger.OwnerOf(proposerAsset)
	if err != nil {
		return nil, err
	}
	if owner != caller {
		return nil, NotAssetOwnerError{
			Asset:  proposerAsset,
			Caller: caller,
			Owner:  owner,
		}
	}
	proposee, err := r.ledger.OwnerOf(proposeeAsset)
	if err != nil {
		return nil, err
	}
	if r.custody.TakesCustody() {
		if err := r.custody.Intake(proposerAsset, caller); err != nil {
			return nil, err
		}
	}
	p, err := r.createProposal(caller, proposee, proposerAsset, proposeeAsset)
	if err != nil {
		// Give the asset back so a storage failure leaves no effects
		if r.custody.TakesCustody() {
			if retErr := r.custody.Return(proposerAsset, caller); retErr != nil {
				r.logger.Error(
					"failed to return asset after create failure",
					"asset", proposerAsset.String(),
					"error", retErr,
				)
			}
		}
		return nil, err
	}
	return p, nil
}

// createProposal allocates the next ID and stores the record. Must be
// called with the registry mutex held.
func (r *Registry) createProposal(
	proposer ledger.Address,
	proposee ledger.Address,
	proposerAsset ledger.AssetRef,
	proposeeAsset ledger.AssetRef,
) (*Proposal, error) {
	initial := StatusProposed
	if r.custody.TakesCustody() {
		initial = StatusPending
	}
	p := Proposal{
		Id:            r.counter + 1,
		Proposer:      proposer,
		Proposee:      proposee,
		ProposerAsset: proposerAsset,
		ProposeeAsset: proposeeAsset,
		Status:        initial,
		CreatedAt:     time.Now(),
	}
	if err := r.db.SetProposal(modelFromProposal(p), nil); err != nil {
		return nil, err
	}
	r.counter = p.Id
	r.metrics.proposalsCreated.Inc()
	r.metrics.proposalsOpen.Inc()
	r.logger.Info(
		"proposal created",
		"id", p.Id,
		"proposer", string(p.Proposer),
		"proposee", string(p.Proposee),
		"status", p.Status.String(),
	)
	r.publish(ProposalCreatedEventType, p)
	return &p, nil
}

// AcceptSwapProposal accepts a proposal as the proposee. In direct
// custody mode this settles the swap immediately: the proposee's
// asset is delivered straight to the proposer (requiring a prior
// escrow approval) and the escrowed proposer asset is released to the
// proposee, atomically. In EOA custody mode the proposal simply
// completes, with delivery trusted to the designated custodian.
func (r *Registry) AcceptSwapProposal(
	ctx context.Context,
	caller ledger.Address,
	id uint64,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	p, err := r.getProposal(id)
	if err != nil {
		return err
	}
	if caller != p.Proposee {
		return ErrNotProposee
	}
	if !p.Status.Open() {
		return InvalidStateError{Id: id, Status: p.Status}
	}
	return r.complete(p, custody.Settlement{
		ProposerAsset:     p.ProposerAsset,
		ProposeeAsset:     p.ProposeeAsset,
		Proposer:          p.Proposer,
		Proposee:          p.Proposee,
		ProposeeAssetFrom: p.Proposee,
	})
}

// complete marks the proposal completed and settles custody. The
// status write is reverted if settlement fails, so the transition and
// the transfers commit or abort together. Must be called with the
// registry mutex held.
func (r *Registry) complete(p *Proposal, s custody.Settlement) error {
	prev := p.Status
	if err := r.db.UpdateProposalStatus(
		p.Id,
		uint8(StatusCompleted),
		nil,
	); err != nil {
		return err
	}
	if err := r.custody.Settle(s); err != nil {
		if revErr := r.db.UpdateProposalStatus(
			p.Id,
			uint8(prev),
			nil,
		); revErr != nil {
			// Both the settlement and the revert failed; state may be
			// inconsistent and this needs operator attention
			r.logger.Error(
				"failed to revert status after settlement failure",
				"id", p.Id,
				"error", revErr,
			)
		}
		return err
	}
	p.Status = StatusCompleted
	r.metrics.proposalsCompleted.Inc()
	r.metrics.proposalsOpen.Dec()
	r.logger.Info(
		"proposal completed",
		"id", p.Id,
	)
	r.publish(ProposalCompletedEventType, *p)
	return nil
}

// CancelProposal withdraws a proposal as its proposer. Any escrowed
// proposer asset is returned.
func (r *Registry) CancelProposal(
	ctx context.Context,
	caller ledger.Address,
	id uint64,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	p, err := r.getProposal(id)
	if err != nil {
		return err
	}
	if !p.Status.Open() {
		return InvalidStateError{Id: id, Status: p.Status}
	}
	if caller != p.Proposer {
		return ErrNotProposer
	}
	return r.reject(p)
}

// RejectProposal declines a proposal as its proposee. Any escrowed
// proposer asset is returned.
func (r *Registry) RejectProposal(
	ctx context.Context,
	caller ledger.Address,
	id uint64,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	p, err := r.getProposal(id)
	if err != nil {
		return err
	}
	if !p.Status.Open() {
		return InvalidStateError{Id: id, Status: p.Status}
	}
	if caller != p.Proposee {
		return ErrNotProposee
	}
	return r.reject(p)
}

// reject marks the proposal rejected and returns escrowed custody.
// Must be called with the registry mutex held.
func (r *Registry) reject(p *Proposal) error {
	prev := p.Status
	if err := r.db.UpdateProposalStatus(
		p.Id,
		uint8(StatusRejected),
		nil,
	); err != nil {
		return err
	}
	if r.custody.TakesCustody() && prev == StatusPending {
		if err := r.custody.Return(p.ProposerAsset, p.Proposer); err != nil {
			if revErr := r.db.UpdateProposalStatus(
				p.Id,
				uint8(prev),
				nil,
			); revErr != nil {
				r.logger.Error(
					"failed to revert status after return failure",
					"id", p.Id,
					"error", revErr,
				)
			}
			return err
		}
	}
	p.Status = StatusRejected
	r.metrics.proposalsRejected.Inc()
	r.metrics.proposalsOpen.Dec()
	r.logger.Info(
		"proposal rejected",
		"id", p.Id,
	)
	r.publish(ProposalRejectedEventType, *p)
	return nil
}

// Swap confirms settlement of an accepted proposal. Admin only, EOA
// custody mode only: it verifies both assets are observably held by
// the designated custodian before confirming. Confirmation is
// idempotent on an already completed proposal.
func (r *Registry) Swap(
	ctx context.Context,
	caller ledger.Address,
	id uint64,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.admin == "" || caller != r.admin {
		return ErrNotAdmin
	}
	if r.custody.TakesCustody() {
		return ErrSwapUnsupported
	}
	p, err := r.getProposal(id)
	if err != nil {
		return err
	}
	if p.Status != StatusAccepted && p.Status != StatusCompleted {
		return InvalidStateError{Id: id, Status: p.Status}
	}
	if err := r.custody.VerifyHeld(
		p.ProposerAsset,
		p.ProposeeAsset,
	); err != nil {
		return err
	}
	if p.Status == StatusCompleted {
		// Already completed on accept; confirmation is a no-op
		return nil
	}
	if err := r.db.UpdateProposalStatus(
		p.Id,
		uint8(StatusCompleted),
		nil,
	); err != nil {
		return err
	}
	p.Status = StatusCompleted
	r.metrics.proposalsCompleted.Inc()
	r.publish(ProposalCompletedEventType, *p)
	return nil
}

// Proposals returns every proposal ever recorded, in ID order. The
// result is a consistent snapshot, but it is unbounded: it grows with
// every proposal for the lifetime of the service and is never paged
// or pruned. Callers that only need recent activity should subscribe
// to proposal events instead.
func (r *Registry) Proposals(ctx context.Context) ([]Proposal, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	items, err := r.db.GetProposals(nil)
	if err != nil {
		return nil, err
	}
	ret := make([]Proposal, 0, len(items))
	for i := range items {
		ret = append(ret, proposalFromModel(&items[i]))
	}
	return ret, nil
}

// GetProposal returns a single proposal by ID
func (r *Registry) GetProposal(
	ctx context.Context,
	id uint64,
) (*Proposal, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.getProposal(id)
}

// getProposal looks up a proposal, distinguishing a missing record
// from a storage error. Must be called with the registry mutex held.
func (r *Registry) getProposal(id uint64) (*Proposal, error) {
	item, err := r.db.GetProposal(id, nil)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ProposalNotFoundError{Id: id}
	}
	p := proposalFromModel(item)
	return &p, nil
}

// handleReceive is the escrow receive hook for direct custody mode.
// The inbound transfer has already moved the asset into escrow;
// returning an error reverts it. The attached metadata is decoded
// into an explicit intent and fully validated before any further
// state change, so the whole propose-or-complete operation commits or
// aborts as one unit.
func (r *Registry) handleReceive(recv ledger.Received) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	intent, err := custody.DecodeIntent(recv.Data)
	if err != nil {
		return err
	}
	if intent.Kind() == custody.IntentNewProposal {
		if recv.Asset != intent.ProposerAsset() {
			return custody.AssetMismatchError{
				Declared: intent.ProposerAsset(),
				Received: recv.Asset,
			}
		}
		proposee, err := r.ledger.OwnerOf(intent.ProposeeAsset())
		if err != nil {
			return err
		}
		// The asset is already escrowed, so no intake here
		_, err = r.createProposal(
			recv.From,
			proposee,
			intent.ProposerAsset(),
			intent.ProposeeAsset(),
		)
		return err
	}
	p, err := r.getProposal(intent.ProposalId)
	if err != nil {
		return err
	}
	if recv.From != p.Proposee {
		return ErrNotProposee
	}
	if !p.Status.Open() {
		return InvalidStateError{Id: p.Id, Status: p.Status}
	}
	if recv.Asset != p.ProposeeAsset {
		return custody.AssetMismatchError{
			Declared: p.ProposeeAsset,
			Received: recv.Asset,
		}
	}
	// The proposee's asset arrived in escrow with this transfer, so
	// settlement releases it from there
	return r.complete(p, custody.Settlement{
		ProposerAsset:     p.ProposerAsset,
		ProposeeAsset:     p.ProposeeAsset,
		Proposer:          p.Proposer,
		Proposee:          p.Proposee,
		ProposeeAssetFrom: r.custody.Holder(),
	})
}

func (r *Registry) publish(eventType event.EventType, p Proposal) {
	if r.eventBus == nil {
		return
	}
	r.eventBus.Publish(
		eventType,
		event.NewEvent(eventType, ProposalEvent{Proposal: p}),
	)
}
