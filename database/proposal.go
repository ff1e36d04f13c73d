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

package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openbarter/barter/database/models"
)

// SetProposal inserts a proposal into the proposal table
func (d *Database) SetProposal(item *models.Proposal, txn *gorm.DB) error {
	result := d.resolveDB(txn).Create(item)
	return result.Error
}

// GetProposal retrieves a proposal by ID. Returns nil with no error
// when the record is not found.
func (d *Database) GetProposal(
	id uint64,
	txn *gorm.DB,
) (*models.Proposal, error) {
	ret := models.Proposal{}
	result := d.resolveDB(txn).Where("id = ?", id).First(&ret)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, result.Error
		}
		return nil, nil // Record not found
	}
	return &ret, nil
}

// GetProposals retrieves all proposals in ID order
func (d *Database) GetProposals(txn *gorm.DB) ([]models.Proposal, error) {
	var ret []models.Proposal
	result := d.resolveDB(txn).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// UpdateProposalStatus updates the status column of an existing proposal
func (d *Database) UpdateProposalStatus(
	id uint64,
	status uint8,
	txn *gorm.DB,
) error {
	result := d.resolveDB(txn).Model(&models.Proposal{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MaxProposalId returns the highest proposal ID ever assigned, or
// zero when no proposals exist
func (d *Database) MaxProposalId(txn *gorm.DB) (uint64, error) {
	var ret uint64
	result := d.resolveDB(txn).Model(&models.Proposal{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&ret)
	if result.Error != nil {
		return 0, result.Error
	}
	return ret, nil
}
