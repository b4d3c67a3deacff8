// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for rigrun-chat.
//
// Configuration is TOML, decoded with github.com/BurntSushi/toml, with
// built-in defaults, environment variable overrides and validation.
//
// # Configuration Precedence
//
//   - Environment variables (RIGRUN_CHAT_*)
//   - ~/.rigrun-chat/config.toml (or --config PATH)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mgr := conn.New(conn.ConfigFrom(cfg), conn.NewWebsocketDialer(nil), logger)
package config
