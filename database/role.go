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

// SetRoleGrant inserts a role grant. The unique index on the role
// column rejects a second grant of the same role.
func (d *Database) SetRoleGrant(role, address string, txn *gorm.DB) error {
	item := models.RoleGrant{
		Role:    role,
		Address: address,
	}
	result := d.resolveDB(txn).Create(&item)
	return result.Error
}

// GetRoleGrant retrieves the address holding the given role. Returns
// an empty string with no error when the role has not been granted.
func (d *Database) GetRoleGrant(role string, txn *gorm.DB) (string, error) {
	ret := models.RoleGrant{}
	result := d.resolveDB(txn).Where("role = ?", role).First(&ret)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", result.Error
		}
		return "", nil // Record not found
	}
	return ret.Address, nil
}
