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

// RoleGrant records a role assignment. The unique index on Role
// enforces the grant-once rule at the storage layer.
type RoleGrant struct {
	ID      uint   `gorm:"primarykey"`
	Role    string `gorm:"uniqueIndex;size:64;not null"`
	Address string `gorm:"index;size:128;not null"`
}

func (RoleGrant) TableName() string {
	return "role_grant"
}
