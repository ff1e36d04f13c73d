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

// Token mirrors ownership state in the asset ledger. Operator holds
// the single address approved to transfer the token on the owner's
// behalf; it is cleared on every ownership change.
type Token struct {
	ID         uint   `gorm:"primarykey"`
	Collection string `gorm:"uniqueIndex:idx_token_ref;size:128;not null"`
	TokenId    uint64 `gorm:"uniqueIndex:idx_token_ref;not null"`
	Owner      string `gorm:"index;size:128;not null"`
	Operator   string `gorm:"size:128"`
}

func (Token) TableName() string {
	return "token"
}
