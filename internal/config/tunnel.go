// tunnel.go - Tunneling-provider request header convention
package config

import (
	"net/http"
	"strings"
)

// tunnelSuffixes are hostname suffixes of known tunneling providers that
// interpose an interstitial page unless a bypass header is present.
var tunnelSuffixes = []string{
	".loca.lt",
	".ngrok-free.app",
	".ngrok.io",
}

// ApplyTunnelBypass attaches the bypass header when the request targets a
// known tunneling provider. No-op for ordinary hosts.
func ApplyTunnelBypass(req *http.Request) {
	host := req.URL.Hostname()
	for _, suffix := range tunnelSuffixes {
		if strings.HasSuffix(host, suffix) {
			req.Header.Set("Bypass-Tunnel-Reminder", "true")
			req.Header.Set("ngrok-skip-browser-warning", "true")
			return
		}
	}
}
