/*
Zaparoo Launcher
Copyright (c) 2026 The Zaparoo Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Zaparoo Launcher.

Zaparoo Launcher is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Zaparoo Launcher is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Zaparoo Launcher.  If not, see <http://www.gnu.org/licenses/>.
*/

package servers

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"
)

// ServiceType is the DNS-SD type LAN game servers advertise.
const ServiceType = "_zaparoo-game._tcp"

// virtualInterfacePrefixes are container and VPN interfaces that never
// carry LAN servers.
var virtualInterfacePrefixes = []string{
	"docker", "br-", "veth", "virbr", "lxc", "lxd",
	"cni", "flannel", "cali", "tunl", "wg",
}

func filterInterfaces(ifaces []net.Interface) []net.Interface {
	var preferred []net.Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 ||
			iface.Flags&net.FlagLoopback != 0 ||
			iface.Flags&net.FlagMulticast == 0 {
			continue
		}
		name := strings.ToLower(iface.Name)
		virtual := false
		for _, prefix := range virtualInterfacePrefixes {
			if strings.HasPrefix(name, prefix) {
				virtual = true
				break
			}
		}
		if !virtual {
			preferred = append(preferred, iface)
		}
	}
	return preferred
}

// entryToDescriptor reads a browse result. TXT keys: title, profile.
func entryToDescriptor(e *zeroconf.ServiceEntry) (Descriptor, bool) {
	if e == nil || e.Port <= 0 {
		return Descriptor{}, false
	}

	d := Descriptor{
		Title:  e.Instance,
		Port:   e.Port,
		Source: SourceLAN,
	}
	for _, kv := range e.Text {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "title":
			d.Title = v
		case "profile":
			d.ProfileUUID = v
		}
	}

	switch {
	case len(e.AddrIPv4) > 0:
		d.Host = e.AddrIPv4[0].String()
	case e.HostName != "":
		d.Host = strings.TrimSuffix(e.HostName, ".")
	default:
		return Descriptor{}, false
	}

	if d.Title == "" || d.ProfileUUID == "" {
		return Descriptor{}, false
	}
	return d, true
}

func (s *Service) addDiscovered(d Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discovered[d.Title]; !ok {
		log.Info().Str("server", d.Title).Str("addr", net.JoinHostPort(d.Host, strconv.Itoa(d.Port))).
			Msg("discovered LAN server")
	}
	s.discovered[d.Title] = d
}

func sortedDiscovered(m map[string]Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// StartDiscovery browses the LAN for game servers until ctx is done.
// Found servers are appended to List results. It is a no-op when
// discovery is disabled.
func (s *Service) StartDiscovery(ctx context.Context) error {
	if !s.cfg.DiscoveryEnabled() {
		log.Debug().Msg("LAN server discovery disabled")
		return nil
	}

	var opts []zeroconf.ClientOption
	if ifaces, err := net.Interfaces(); err == nil {
		if preferred := filterInterfaces(ifaces); len(preferred) > 0 {
			opts = append(opts, zeroconf.SelectIfaces(preferred))
		}
	}

	resolver, err := zeroconf.NewResolver(opts...)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-entries:
				if !ok {
					return
				}
				if d, ok := entryToDescriptor(e); ok {
					s.addDiscovered(d)
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, "local.", entries); err != nil {
		return fmt.Errorf("failed to browse for LAN servers: %w", err)
	}

	log.Info().Str("service", ServiceType).Msg("browsing for LAN servers")
	return nil
}
