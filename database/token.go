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

// SetToken inserts a token into the token table
func (d *Database) SetToken(item *models.Token, txn *gorm.DB) error {
	result := d.resolveDB(txn).Create(item)
	return result.Error
}

// GetToken retrieves a token by collection and token ID. Returns nil
// with no error when the record is not found.
func (d *Database) GetToken(
	collection string,
	tokenId uint64,
	txn *gorm.DB,
) (*models.Token, error) {
	ret := models.Token{}
	result := d.resolveDB(txn).
		Where("collection = ? AND token_id = ?", collection, tokenId).
		First(&ret)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, result.Error
		}
		return nil, nil // Record not found
	}
	return &ret, nil
}

// UpdateTokenOwner updates the owner of a token and clears any
// operator approval
func (d *Database) UpdateTokenOwner(
	collection string,
	tokenId uint64,
	owner string,
	txn *gorm.DB,
) error {
	result := d.resolveDB(txn).Model(&models.Token{}).
		Where("collection = ? AND token_id = ?", collection, tokenId).
		Updates(map[string]any{
			"owner":    owner,
			"operator": "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateTokenOperator sets the operator approved to transfer a token
func (d *Database) UpdateTokenOperator(
	collection string,
	tokenId uint64,
	operator string,
	txn *gorm.DB,
) error {
	result := d.resolveDB(txn).Model(&models.Token{}).
		Where("collection = ? AND token_id = ?", collection, tokenId).
		Update("operator", operator)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
