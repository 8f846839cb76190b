package testing

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/joymouse/apitypes"
	"github.com/Alia5/joymouse/device/mouse"
	"github.com/Alia5/joymouse/internal/auth"
)

// ViiperServer is an in-process stand-in for a VIIPER server. It keeps
// buses and devices in memory and records every mouse state streamed to it.
type ViiperServer struct {
	ln  net.Listener
	key []byte

	mu       sync.Mutex
	buses    map[uint32][]string
	nextDev  map[uint32]int
	requests []string
	states   []mouse.InputState
	notify   chan struct{}
}

// NewViiperServer starts a server on a loopback port. A non-empty password
// requires the auth handshake on every connection.
func NewViiperServer(t *testing.T, password string, buses ...uint32) *ViiperServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &ViiperServer{
		ln:      ln,
		buses:   map[uint32][]string{},
		nextDev: map[uint32]int{},
		notify:  make(chan struct{}, 1),
	}
	if password != "" {
		if s.key, err = auth.DeriveKey(password); err != nil {
			t.Fatalf("derive key: %v", err)
		}
	}
	for _, b := range buses {
		s.buses[b] = nil
	}
	go s.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *ViiperServer) Addr() string { return s.ln.Addr().String() }

// Requests returns the request paths seen so far, stream paths included.
func (s *ViiperServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Buses returns the live bus numbers in ascending order.
func (s *ViiperServer) Buses() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busList()
}

// Devices returns the device ids on bus.
func (s *ViiperServer) Devices(bus uint32) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.buses[bus]...)
}

// WaitStates blocks until n states were streamed or timeout passes, and
// returns what was received.
func (s *ViiperServer) WaitStates(n int, timeout time.Duration) []mouse.InputState {
	deadline := time.After(timeout)
	for {
		s.mu.Lock()
		if len(s.states) >= n {
			out := append([]mouse.InputState(nil), s.states...)
			s.mu.Unlock()
			return out
		}
		s.mu.Unlock()
		select {
		case <-s.notify:
		case <-deadline:
			s.mu.Lock()
			defer s.mu.Unlock()
			return append([]mouse.InputState(nil), s.states...)
		}
	}
}

func (s *ViiperServer) busList() []uint32 {
	out := make([]uint32, 0, len(s.buses))
	for b := range s.buses {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

func (s *ViiperServer) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(c)
	}
}

func (s *ViiperServer) handleConn(conn net.Conn) {
	defer conn.Close()

	var rw io.ReadWriter = conn
	r := bufio.NewReader(conn)
	if s.key != nil {
		sc, ok := s.accept(r, conn)
		if !ok {
			return
		}
		rw = sc
		r = bufio.NewReader(sc)
	}

	req, err := r.ReadString('\x00')
	if err != nil {
		return
	}
	req = strings.TrimSuffix(req, "\x00")
	path, payload, _ := strings.Cut(req, " ")

	s.mu.Lock()
	s.requests = append(s.requests, path)
	s.mu.Unlock()

	if bus, dev, ok := s.streamTarget(path); ok {
		s.stream(r, bus, dev)
		return
	}

	resp, err := s.handle(path, payload)
	if err != nil {
		var apiErr apitypes.ApiError
		if !errors.As(err, &apiErr) {
			apiErr = apitypes.ApiError{Status: 500, Title: "Internal Server Error", Detail: err.Error()}
		}
		resp = apiErr
	}
	b, _ := json.Marshal(resp)
	_, _ = fmt.Fprintf(rw, "%s\n", b)
}

func (s *ViiperServer) accept(r *bufio.Reader, conn net.Conn) (net.Conn, bool) {
	buf := make([]byte, len(auth.HandshakeMagic)+auth.NonceSize+32)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false
	}
	if string(buf[:len(auth.HandshakeMagic)]) != auth.HandshakeMagic {
		_, _ = fmt.Fprintln(conn, `{"status":401,"title":"Unauthorized","detail":"authentication required"}`)
		return nil, false
	}
	clientNonce := buf[len(auth.HandshakeMagic) : len(auth.HandshakeMagic)+auth.NonceSize]
	if !hmac.Equal(buf[len(auth.HandshakeMagic)+auth.NonceSize:], auth.ClientProof(s.key, clientNonce)) {
		_, _ = fmt.Fprintln(conn, `{"status":401,"title":"Unauthorized","detail":"invalid password"}`)
		return nil, false
	}
	serverNonce := make([]byte, auth.NonceSize)
	_, _ = rand.Read(serverNonce)
	if _, err := conn.Write(append([]byte("OK\x00"), serverNonce...)); err != nil {
		return nil, false
	}
	sc, err := auth.WrapConn(conn, auth.DeriveSessionKey(s.key, serverNonce, clientNonce))
	if err != nil {
		return nil, false
	}
	return sc, true
}

func (s *ViiperServer) handle(path, payload string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch path {
	case "ping":
		return apitypes.PingResponse{Server: "VIIPER", Version: "test"}, nil
	case "bus/list":
		return apitypes.BusListResponse{Buses: s.busList()}, nil
	case "bus/create":
		id, err := parseBus(payload)
		if err != nil {
			return nil, err
		}
		if _, ok := s.buses[id]; ok {
			return nil, apitypes.ApiError{Status: 409, Title: "Conflict", Detail: fmt.Sprintf("bus %d already exists", id)}
		}
		s.buses[id] = nil
		return apitypes.BusCreateResponse{BusID: id}, nil
	case "bus/remove":
		id, err := parseBus(payload)
		if err != nil {
			return nil, err
		}
		if _, ok := s.buses[id]; !ok {
			return nil, notFound("bus %d not found", id)
		}
		delete(s.buses, id)
		return apitypes.BusRemoveResponse{BusID: id}, nil
	}

	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] != "bus" {
		return nil, notFound("unknown path %s", path)
	}
	id, err := parseBus(parts[1])
	if err != nil {
		return nil, err
	}
	devs, ok := s.buses[id]
	if !ok {
		return nil, notFound("bus %d not found", id)
	}

	switch parts[2] {
	case "add":
		var req apitypes.DeviceCreateRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Type == nil {
			return nil, apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: "invalid device request"}
		}
		s.nextDev[id]++
		dev := strconv.Itoa(s.nextDev[id])
		s.buses[id] = append(devs, dev)
		vid, pid := uint16(0x2e8a), uint16(0x0011)
		if req.IdVendor != nil {
			vid = *req.IdVendor
		}
		if req.IdProduct != nil {
			pid = *req.IdProduct
		}
		return apitypes.Device{
			BusID: id,
			DevId: dev,
			Vid:   fmt.Sprintf("0x%04x", vid),
			Pid:   fmt.Sprintf("0x%04x", pid),
			Type:  *req.Type,
		}, nil
	case "remove":
		i := slices.Index(devs, payload)
		if i < 0 {
			return nil, notFound("device %s not found on bus %d", payload, id)
		}
		s.buses[id] = slices.Delete(devs, i, i+1)
		return apitypes.DeviceRemoveResponse{BusID: id, DevId: payload}, nil
	}
	return nil, notFound("unknown path %s", path)
}

func (s *ViiperServer) streamTarget(path string) (uint32, string, bool) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] != "bus" || parts[2] == "add" || parts[2] == "remove" {
		return 0, "", false
	}
	id, err := parseBus(parts[1])
	if err != nil {
		return 0, "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return id, parts[2], slices.Contains(s.buses[id], parts[2])
}

func (s *ViiperServer) stream(r io.Reader, bus uint32, dev string) {
	buf := make([]byte, mouse.WireSize)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return
		}
		var st mouse.InputState
		_ = st.UnmarshalBinary(buf)

		s.mu.Lock()
		live := slices.Contains(s.buses[bus], dev)
		if live {
			s.states = append(s.states, st)
		}
		s.mu.Unlock()
		if !live {
			return
		}
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

func parseBus(v string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: fmt.Sprintf("invalid busId: %v", err)}
	}
	return uint32(id), nil
}

func notFound(format string, args ...any) error {
	return apitypes.ApiError{Status: 404, Title: "Not Found", Detail: fmt.Sprintf(format, args...)}
}
