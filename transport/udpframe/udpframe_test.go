package udpframe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"swarmnode/transport/udpframe"
)

type recordingListener struct {
	received chan []byte
}

func (r *recordingListener) Deliver(frame []byte) {
	r.received <- append([]byte(nil), frame...)
}

func TestSendAndReceiveRoundTrip(t *testing.T) {
	a, err := udpframe.Open("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer a.Close()

	b, err := udpframe.Open("127.0.0.1:0", []string{a.LocalAddr().String()})
	require.NoError(t, err)
	defer b.Close()

	lst := &recordingListener{received: make(chan []byte, 1)}
	go a.Listen(lst)

	payload := []byte{0x03, 9, 0, 0, 0, 1}
	require.NoError(t, b.Send(payload))

	select {
	case got := <-lst.received:
		require.Equal(t, payload, got)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not received")
	}
}
