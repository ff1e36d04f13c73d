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

	"github.com/openbarter/barter/ledger"
)

// RoleAdmin is the single administrative role, granted exactly once
// at initialization
const RoleAdmin = "admin"

// Initialize grants the admin role. It may be called exactly once for
// the lifetime of the registry's database; a second call fails with
// ErrAlreadyInitialized.
func (r *Registry) Initialize(
	ctx context.Context,
	admin ledger.Address,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.admin != "" {
		return ErrAlreadyInitialized
	}
	if err := r.db.SetRoleGrant(RoleAdmin, string(admin), nil); err != nil {
		return err
	}
	r.admin = admin
	r.logger.Info(
		"registry initialized",
		"admin", string(admin),
	)
	return nil
}

// HasRole reports whether the identity holds the given role. Caller
// identity checks are structural equality against the granted
// address; there is no delegation.
func (r *Registry) HasRole(role string, identity ledger.Address) bool {
	if role != RoleAdmin {
		return false
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.admin != "" && r.admin == identity
}
