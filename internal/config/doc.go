// SPDX-License-Identifier: MPL-2.0

// Package config loads sitegen's configuration.
//
// Defaults live in Viper. A project may add a sitegen.cue file in the site
// root (or pass --config); it is validated against the embedded #Config CUE
// schema and merged over the defaults. SITEGEN_* environment variables
// override both, e.g. SITEGEN_SITE_BASE=/docs/.
package config
