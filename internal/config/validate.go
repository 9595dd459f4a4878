// TRIP Server - Trip Recording and Itinerary Planning
// Copyright 2026 Frank Dean (frankdean)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/frankdean/trip-server-sub001

package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// minSecretLength is the minimum length for signing secrets.
const minSecretLength = 32

// Validate checks the configuration for values the server cannot start
// with. It is called by Load after all layers are merged.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateSecrets,
		c.validateTTLs,
		c.validateBcryptCost,
		c.validateServer,
		c.validateBackup,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSecrets() error {
	if len(c.Security.SessionSecret) < minSecretLength {
		return fmt.Errorf("security.session_secret must be at least %d characters", minSecretLength)
	}
	if len(c.Security.ResourceSecret) < minSecretLength {
		return fmt.Errorf("security.resource_secret must be at least %d characters", minSecretLength)
	}
	// Shared keys would collapse the two token channels into one.
	if c.Security.SessionSecret == c.Security.ResourceSecret {
		return fmt.Errorf("security.session_secret and security.resource_secret must differ")
	}
	if (c.Security.InitialAdminEmail == "") != (c.Security.InitialAdminPassword == "") {
		return fmt.Errorf("security.initial_admin_email and security.initial_admin_password must be set together")
	}
	if c.Security.InitialAdminPassword != "" && len(c.Security.InitialAdminPassword) < 8 {
		return fmt.Errorf("security.initial_admin_password must be at least 8 characters")
	}
	return nil
}

func (c *Config) validateTTLs() error {
	if c.Security.SessionTokenTTL <= 0 {
		return fmt.Errorf("security.session_token_ttl must be positive")
	}
	if c.Security.ResourceTokenTTL <= 0 {
		return fmt.Errorf("security.resource_token_ttl must be positive")
	}
	if c.Security.RenewalWindow < 0 {
		return fmt.Errorf("security.renewal_window must not be negative")
	}
	if c.Security.RenewalWindow >= c.Security.SessionTokenTTL {
		return fmt.Errorf("security.renewal_window must be shorter than security.session_token_ttl")
	}
	return nil
}

func (c *Config) validateBcryptCost() error {
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("security.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func (c *Config) validateBackup() error {
	if !c.Backup.Enabled {
		return nil
	}
	if c.Backup.Directory == "" {
		return fmt.Errorf("backup.directory is required when backups are enabled")
	}
	if c.Backup.Interval <= 0 {
		return fmt.Errorf("backup.interval must be positive")
	}
	if c.Backup.MaxBackups <= 0 {
		return fmt.Errorf("backup.max_backups must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Security.LoginRateLimit <= 0 {
		return fmt.Errorf("security.login_rate_limit must be positive")
	}
	if c.Security.LoginRateWindow <= 0 {
		return fmt.Errorf("security.login_rate_window must be positive")
	}
	return nil
}
