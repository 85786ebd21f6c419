package node_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"swarmnode/node"
)

func TestCodecRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want node.Frame
	}{
		{
			name: "heartbeat",
			buf:  node.EncodeHeartbeat(7, 42, 1.5, -2.5),
			want: node.Frame{Type: node.MsgHeartbeat, Sender: 7, Tick: 42, LeaderX: 1.5, LeaderY: -2.5},
		},
		{
			name: "election acclaim",
			buf:  node.EncodeElectionAcclaim(3, 10, 9),
			want: node.Frame{Type: node.MsgElectionAcclaim, Sender: 3, Tick: 10, ClaimantID: 9},
		},
		{
			name: "coordinator",
			buf:  node.EncodeCoordinator(9, 11),
			want: node.Frame{Type: node.MsgCoordinator, Sender: 9, Tick: 11},
		},
		{
			name: "task claim",
			buf:  node.EncodeTaskClaim(2, 5, 100, 33.5),
			want: node.Frame{Type: node.MsgTaskClaim, Sender: 2, Tick: 5, TaskID: 100, Utility: 33.5},
		},
		{
			name: "task conflict",
			buf:  node.EncodeTaskConflict(2, 5, 100, 6),
			want: node.Frame{Type: node.MsgTaskConflict, Sender: 2, Tick: 5, TaskID: 100, WinnerID: 6},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := node.Decode(tc.buf)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	_, err := node.Decode([]byte{0x01, 0x02})
	require.ErrorIs(t, err, node.ErrFrameTooShort)
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	// valid 6-byte header claiming MsgHeartbeat, but no payload bytes.
	buf := []byte{byte(node.MsgHeartbeat), 1, 0, 0, 0, 7}
	_, err := node.Decode(buf)
	require.ErrorIs(t, err, node.ErrFrameTooShort)
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	buf := []byte{0xFF, 1, 0, 0, 0, 1}
	_, err := node.Decode(buf)
	require.ErrorIs(t, err, node.ErrUnknownMsgType)
}
