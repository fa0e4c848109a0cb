// Package settings holds the user-facing synchronization settings.
//
// Most users only set the dedicated server's address and access code; the
// manifest and download URLs are derived from them:
//
//	http://{server_ip}:{server_port}/feed/dedicated-server-stats.xml?code={server_code}
//	http://{server_ip}:{server_port}/mods
//
// manifest_url and cdn_url override the derived values, e.g. when mods are
// served from a separate web host.
//
// Settings are loaded by core/config under the "sync" section, so every key
// can be set from the environment as SYNC_<KEY>.
package settings
