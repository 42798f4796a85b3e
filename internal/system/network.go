package system

import (
	"errors"
	"net"
	"strings"
)

var ErrNoLANAddress = errors.New("no LAN IPv4 address")

// LANIPv4 returns the first non-loopback IPv4 address of an interface that is up.
func LANIPv4() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipNet.IP.To4(); ip != nil && !ip.IsLinkLocalUnicast() {
				return ip.String(), nil
			}
		}
	}
	return "", ErrNoLANAddress
}

// SettingsURL builds the address a phone on the same network can open for the
// settings window. Wildcard hosts are replaced with lanIP, or loopback if unknown.
func SettingsURL(listen, lanIP string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		host, port = strings.TrimSpace(listen), "80"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = lanIP
		if host == "" {
			host = "127.0.0.1"
		}
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
