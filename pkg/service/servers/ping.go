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
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
)

// Server list ping, the status handshake every Minecraft server answers.
const (
	pingProtocolVersion = -1
	pingNextStateStatus = 1
	maxStatusLength     = 1 << 20
	maxVarIntBytes      = 5
)

var ErrBadStatus = errors.New("malformed status response")

type statusResponse struct {
	Players struct {
		Online int `json:"online"`
		Max    int `json:"max"`
	} `json:"players"`
}

// Ping performs a server list ping. ctx bounds the whole exchange.
func Ping(ctx context.Context, host string, port int) (Status, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return Status{}, fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.Write(handshake(host, port)); err != nil {
		return Status{}, fmt.Errorf("failed to send handshake: %w", err)
	}

	return readStatus(bufio.NewReader(conn))
}

func appendVarInt(b []byte, v int32) []byte {
	return binary.AppendUvarint(b, uint64(uint32(v)))
}

func appendString(b []byte, s string) []byte {
	b = appendVarInt(b, int32(len(s))) //nolint:gosec // host names are short
	return append(b, s...)
}

func frame(payload []byte) []byte {
	out := appendVarInt(nil, int32(len(payload))) //nolint:gosec // packets are small
	return append(out, payload...)
}

// handshake returns the handshake packet followed by the status request.
func handshake(host string, port int) []byte {
	var p []byte
	p = appendVarInt(p, 0x00)
	p = appendVarInt(p, pingProtocolVersion)
	p = appendString(p, host)
	p = binary.BigEndian.AppendUint16(p, uint16(port)) //nolint:gosec // validated port range
	p = appendVarInt(p, pingNextStateStatus)

	out := frame(p)
	return append(out, frame([]byte{0x00})...)
}

func readVarInt(r io.ByteReader) (int, error) {
	var (
		v     uint32
		shift uint
	)
	for range maxVarIntBytes {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err //nolint:wrapcheck // wrapped by readStatus
		}
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return int(int32(v)), nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("%w: varint too long", ErrBadStatus)
}

func readStatus(r *bufio.Reader) (Status, error) {
	length, err := readVarInt(r)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read packet length: %w", err)
	}
	if length <= 0 || length > maxStatusLength {
		return Status{}, fmt.Errorf("%w: packet length %d", ErrBadStatus, length)
	}

	body := bufio.NewReader(io.LimitReader(r, int64(length)))
	id, err := readVarInt(body)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read packet id: %w", err)
	}
	if id != 0x00 {
		return Status{}, fmt.Errorf("%w: packet id %d", ErrBadStatus, id)
	}

	strLen, err := readVarInt(body)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read status length: %w", err)
	}
	if strLen <= 0 || strLen > length {
		return Status{}, fmt.Errorf("%w: status length %d", ErrBadStatus, strLen)
	}

	raw := make([]byte, strLen)
	if _, err := io.ReadFull(body, raw); err != nil {
		return Status{}, fmt.Errorf("failed to read status: %w", err)
	}

	var resp statusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrBadStatus, err)
	}

	return Status{Online: resp.Players.Online, Max: resp.Players.Max}, nil
}
