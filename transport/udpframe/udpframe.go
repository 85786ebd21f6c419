// Package udpframe is the reference Transport: best-effort UDP broadcast of
// the fixed-format frames node/codec.go produces.
//
// The teacher dials one net/rpc connection per peer address (node/client.go's
// RPCClient.Call). That per-peer-dial shape survives here as Peers — a
// static address list — but the transport underneath swaps TCP/RPC for
// connectionless UDP datagrams, since spec.md §6 already commits the wire to
// tolerating loss and reordering; a dial-and-call-per-send model would
// silently add reliability the protocol never asked for.
package udpframe

import (
	"net"

	"github.com/sirupsen/logrus"
)

// MaxFrameSize bounds a single datagram. The largest frame the codec ever
// produces (MsgHeartbeat) is 14 bytes; this leaves generous headroom for
// any address-family overhead without risking UDP fragmentation on a LAN.
const MaxFrameSize = 512

// Adapter is the reference implementation of node.Transport: it broadcasts
// every outbound frame to a static set of peer addresses and feeds every
// inbound datagram to a Node's Deliver method.
type Adapter struct {
	conn  *net.UDPConn
	peers []*net.UDPAddr
	log   *logrus.Entry
}

// Listener is the subset of Node that Listen needs, so tests can pass a
// fake without pulling in the full node package.
type Listener interface {
	Deliver(frame []byte)
}

// Open binds a UDP socket at listenAddr and resolves peerAddrs (host:port
// strings) into send targets. Resolution failures on individual peers are
// logged and that peer is skipped, rather than failing the whole adapter —
// spec.md never requires every configured peer to be reachable at startup.
func Open(listenAddr string, peerAddrs []string) (*Adapter, error) {
	laddr, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}

	log := logrus.WithField("component", "udpframe")
	a := &Adapter{conn: conn, log: log}
	for _, raw := range peerAddrs {
		addr, err := net.ResolveUDPAddr("udp", raw)
		if err != nil {
			log.WithFields(logrus.Fields{"peer": raw, "err": err}).Warn("dropping unresolvable peer")
			continue
		}
		a.peers = append(a.peers, addr)
	}
	return a, nil
}

// Send implements node.Transport: broadcast frame to every configured peer.
// One peer's write failure does not block or cancel the rest.
func (a *Adapter) Send(frame []byte) error {
	var lastErr error
	for _, peer := range a.peers {
		if _, err := a.conn.WriteToUDP(frame, peer); err != nil {
			lastErr = err
			a.log.WithFields(logrus.Fields{"peer": peer, "err": err}).Debug("send failed")
		}
	}
	return lastErr
}

// Listen reads datagrams until the socket is closed, handing each one to
// dst.Deliver. Run this in its own goroutine; it returns when Close stops
// the underlying read.
func (a *Adapter) Listen(dst Listener) {
	buf := make([]byte, MaxFrameSize)
	for {
		n, _, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		dst.Deliver(buf[:n])
	}
}

// Close releases the underlying socket, unblocking any in-progress Listen.
func (a *Adapter) Close() error {
	return a.conn.Close()
}

// LocalAddr returns the bound socket address, useful when listenAddr used
// an ephemeral port (":0") and the caller needs to tell peers where to send.
func (a *Adapter) LocalAddr() net.Addr {
	return a.conn.LocalAddr()
}
