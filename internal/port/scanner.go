package port

import (
	"net"
	"strconv"

	"github.com/shinji-kodama/java-in-docker/internal/compose"
)

// Scanner checks whether host ports are available by asking the operating
// system's network stack (net.Listen / net.ListenPacket) directly.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable reports whether port can be bound for protocol on
// hostIP. An empty hostIP checks all interfaces, which is where docker
// publishes ports by default.
//
// Unknown protocols are reported as unavailable.
func (s *Scanner) IsPortAvailable(hostIP string, port int, protocol string) bool {
	addr := net.JoinHostPort(hostIP, strconv.Itoa(port))

	switch protocol {
	case "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = listener.Close() }()
		return true

	case "udp":
		conn, err := net.ListenPacket("udp", addr)
		if err != nil {
			return false
		}
		defer func() { _ = conn.Close() }()
		return true

	default:
		return false
	}
}

// Checkable reports whether IsPortAvailable can check protocol.
func Checkable(protocol string) bool {
	return protocol == "tcp" || protocol == "udp"
}

// BusyPorts returns the published ports whose host side is currently
// bound by another process, in input order. Ports of protocols that
// cannot be checked (e.g., sctp) are never reported.
func (s *Scanner) BusyPorts(ports []compose.PublishedPort) []compose.PublishedPort {
	var busy []compose.PublishedPort
	for _, p := range ports {
		if !Checkable(p.Protocol) {
			continue
		}
		if !s.IsPortAvailable(p.HostIP, p.HostPort, p.Protocol) {
			busy = append(busy, p)
		}
	}
	return busy
}
