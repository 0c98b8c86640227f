package compose

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PublishedPort is a fixed host port published by a service.
type PublishedPort struct {
	HostIP        string `json:"hostIp,omitempty"`
	HostPort      int    `json:"hostPort"`
	ContainerPort int    `json:"containerPort"`
	Protocol      string `json:"protocol"`
}

// String renders the mapping in compose short syntax.
func (p PublishedPort) String() string {
	s := fmt.Sprintf("%d:%d/%s", p.HostPort, p.ContainerPort, p.Protocol)
	if p.HostIP != "" {
		s = p.HostIP + ":" + s
	}
	return s
}

// PortEntry is one element of a service's "ports" list, in either the
// short ("8080:80/tcp") or the long (mapping) syntax.
type PortEntry struct {
	// Raw is the entry as written (short syntax) or a rendering of the
	// long syntax, used in diagnostics.
	Raw string

	short string
	long  *longPort
}

// longPort is the long port syntax. Published may be a number or a range.
type longPort struct {
	Target    int    `yaml:"target"`
	Published string `yaml:"published"`
	HostIP    string `yaml:"host_ip"`
	Protocol  string `yaml:"protocol"`
}

// UnmarshalYAML implements yaml.Unmarshaler for both port syntaxes.
func (e *PortEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		e.Raw = value.Value
		e.short = value.Value
		return nil
	case yaml.MappingNode:
		var lp longPort
		if err := value.Decode(&lp); err != nil {
			return fmt.Errorf("invalid long port syntax at line %d: %w", value.Line, err)
		}
		e.long = &lp
		e.Raw = fmt.Sprintf("published=%s target=%d", lp.Published, lp.Target)
		return nil
	default:
		return fmt.Errorf("invalid port entry at line %d", value.Line)
	}
}

// Published returns the fixed host ports of the entry. Entries that let
// docker choose the host port yield no ports and no error.
func (e PortEntry) Published() ([]PublishedPort, error) {
	if e.long != nil {
		return e.long.published()
	}
	return parseShortSyntax(e.short)
}

func (lp *longPort) published() ([]PublishedPort, error) {
	if lp.Published == "" {
		return nil, nil
	}
	proto := lp.Protocol
	if proto == "" {
		proto = "tcp"
	}
	return pairPorts(lp.HostIP, lp.Published, strconv.Itoa(lp.Target), proto)
}

// parseShortSyntax parses "[[ip:]host:]container[/proto]". IPv6 host
// addresses must be bracketed, as compose requires.
func parseShortSyntax(s string) ([]PublishedPort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty port entry")
	}

	proto := "tcp"
	if spec, p, ok := strings.Cut(s, "/"); ok {
		s, proto = spec, p
	}

	var hostIP string
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]:")
		if end < 0 {
			return nil, fmt.Errorf("invalid port entry %q", s)
		}
		hostIP, s = s[1:end], s[end+2:]
	}

	parts := strings.Split(s, ":")
	switch {
	case len(parts) == 1:
		// Container port only: docker assigns a random host port.
		if _, _, err := parseRange(parts[0]); err != nil {
			return nil, err
		}
		return nil, nil
	case len(parts) == 2:
		return pairPorts(hostIP, parts[0], parts[1], proto)
	case len(parts) == 3 && hostIP == "":
		return pairPorts(parts[0], parts[1], parts[2], proto)
	default:
		return nil, fmt.Errorf("invalid port entry %q", s)
	}
}

// pairPorts combines a host port (or range) with a container port (or
// range). An empty host part means docker picks the host port.
func pairPorts(hostIP, host, container, proto string) ([]PublishedPort, error) {
	cLo, cHi, err := parseRange(container)
	if err != nil {
		return nil, err
	}
	if host == "" {
		return nil, nil
	}
	hLo, hHi, err := parseRange(host)
	if err != nil {
		return nil, err
	}

	// A host range for a single container port lets docker pick one port
	// out of the range, so nothing is fixed.
	if cLo == cHi && hLo != hHi {
		return nil, nil
	}
	if hHi-hLo != cHi-cLo {
		return nil, fmt.Errorf("port ranges %s and %s differ in length", host, container)
	}

	ports := make([]PublishedPort, 0, hHi-hLo+1)
	for i := 0; i <= hHi-hLo; i++ {
		ports = append(ports, PublishedPort{
			HostIP:        hostIP,
			HostPort:      hLo + i,
			ContainerPort: cLo + i,
			Protocol:      proto,
		})
	}
	return ports, nil
}

// parseRange parses "8080" or "8080-8090".
func parseRange(s string) (int, int, error) {
	loStr, hiStr, isRange := strings.Cut(s, "-")
	lo, err := parsePort(loStr)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := parsePort(hiStr)
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("invalid port range %q", s)
	}
	return lo, hi, nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return n, nil
}
