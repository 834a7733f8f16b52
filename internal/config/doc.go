// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// astro-tui: TOML on disk, built-in defaults underneath, environment
// variables on top. The API key is never written with group/world
// permissions.
package config
