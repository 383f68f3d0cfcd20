// Package config manages the sonoslink configuration file.
//
// The file is YAML and holds two things: preferences (discovery timeout and
// mode, MQTT broker, exporter listen address) and a small player registry
// keyed by UUID. The registry remembers each player's last address and zone
// name so that listings can show nicknames. It is never used to skip
// discovery; group membership always comes from a fresh topology query.
//
// # Configuration File Location
//
//   - SONOSLINK_CONFIG, when set
//   - Linux: $XDG_CONFIG_HOME/sonoslink/config.yaml or $HOME/.config/sonoslink/config.yaml
//   - macOS: $HOME/.config/sonoslink/config.yaml
//   - Windows: %LOCALAPPDATA%\sonoslink\config.yaml
//
// # Usage Example
//
//	registry, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.SetNickname("RINCON_000E58A0000101400", "Kitchen One")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Saves go through a temporary file and a rename so a crash never leaves a
// half-written file behind.
package config
