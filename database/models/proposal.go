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

package models

import "time"

// Proposal is a swap proposal record. IDs are allocated by the
// registry counter, never by the database, so autoincrement is
// disabled. Rows are never deleted, which keeps the counter (max ID)
// stable across restarts.
type Proposal struct {
	ID                 uint64 `gorm:"primaryKey;autoIncrement:false"`
	Proposer           string `gorm:"index;size:128;not null"`
	Proposee           string `gorm:"index;size:128;not null"`
	ProposerCollection string `gorm:"size:128;not null"`
	ProposerTokenId    uint64 `gorm:"not null"`
	ProposeeCollection string `gorm:"size:128;not null"`
	ProposeeTokenId    uint64 `gorm:"not null"`
	Status             uint8  `gorm:"index;not null"`
	CreatedAt          time.Time
}

func (Proposal) TableName() string {
	return "proposal"
}
