package node

// codec.go — framed binary encode/decode of the five wire message types.
//
// Every frame is (header || payload), big-endian throughout:
//
//	header:  type u8, sender u8, tick u32   (6 bytes)
//	payload: varies by type, see the switch in Decode.
//
// Decode returns one of two sentinel errors for a short or unknown frame;
// per spec.md §7 such frames are silently dropped, never reported to a
// peer. The two sentinels exist only so tests can tell the drop reasons
// apart; the caller (tick.go) treats both identically: it just moves on.

import (
	"encoding/binary"
	"errors"
	"math"
)

type MsgType byte

const (
	MsgHeartbeat       MsgType = 0x01
	MsgElectionAcclaim MsgType = 0x02
	MsgCoordinator     MsgType = 0x03
	MsgTaskClaim       MsgType = 0x04
	MsgTaskConflict    MsgType = 0x05
)

const headerSize = 6

var (
	ErrFrameTooShort  = errors.New("node: frame shorter than its header or payload")
	ErrUnknownMsgType = errors.New("node: unknown message type code")
)

// Frame is the decoded form of any one of the five wire messages. Only the
// fields relevant to Type are meaningful; the rest are zero.
type Frame struct {
	Type   MsgType
	Sender uint8
	Tick   uint32

	LeaderX, LeaderY float32 // MsgHeartbeat
	ClaimantID       uint8   // MsgElectionAcclaim
	TaskID           uint32  // MsgTaskClaim, MsgTaskConflict
	Utility          float32 // MsgTaskClaim
	WinnerID         uint8   // MsgTaskConflict
}

func putHeader(buf []byte, typ MsgType, sender uint8, tick uint32) {
	buf[0] = byte(typ)
	buf[1] = sender
	binary.BigEndian.PutUint32(buf[2:6], tick)
}

// EncodeHeartbeat builds a HEARTBEAT frame: payload = leader_x, leader_y as
// two big-endian f32s.
func EncodeHeartbeat(sender uint8, tick uint32, x, y float64) []byte {
	buf := make([]byte, headerSize+8)
	putHeader(buf, MsgHeartbeat, sender, tick)
	binary.BigEndian.PutUint32(buf[6:10], math.Float32bits(float32(x)))
	binary.BigEndian.PutUint32(buf[10:14], math.Float32bits(float32(y)))
	return buf
}

// EncodeElectionAcclaim builds an ELECTION_ACCLAIM frame: payload =
// claimant_id as u8.
func EncodeElectionAcclaim(sender uint8, tick uint32, claimantID uint8) []byte {
	buf := make([]byte, headerSize+1)
	putHeader(buf, MsgElectionAcclaim, sender, tick)
	buf[6] = claimantID
	return buf
}

// EncodeCoordinator builds a COORDINATOR frame with an empty payload.
func EncodeCoordinator(sender uint8, tick uint32) []byte {
	buf := make([]byte, headerSize)
	putHeader(buf, MsgCoordinator, sender, tick)
	return buf
}

// EncodeTaskClaim builds a TASK_CLAIM frame: payload = task_id u32,
// utility f32.
func EncodeTaskClaim(sender uint8, tick uint32, taskID uint32, utility float32) []byte {
	buf := make([]byte, headerSize+8)
	putHeader(buf, MsgTaskClaim, sender, tick)
	binary.BigEndian.PutUint32(buf[6:10], taskID)
	binary.BigEndian.PutUint32(buf[10:14], math.Float32bits(utility))
	return buf
}

// EncodeTaskConflict builds a TASK_CONFLICT frame: payload = task_id u32,
// winner_id u8.
func EncodeTaskConflict(sender uint8, tick uint32, taskID uint32, winnerID uint8) []byte {
	buf := make([]byte, headerSize+5)
	putHeader(buf, MsgTaskConflict, sender, tick)
	binary.BigEndian.PutUint32(buf[6:10], taskID)
	buf[10] = winnerID
	return buf
}

// Decode parses one complete frame. Frames shorter than the 6-byte header
// or carrying an unrecognized type code are rejected with a sentinel error
// — both are robustness guards, never surfaced to a peer.
func Decode(buf []byte) (Frame, error) {
	if len(buf) < headerSize {
		return Frame{}, ErrFrameTooShort
	}
	f := Frame{
		Type:   MsgType(buf[0]),
		Sender: buf[1],
		Tick:   binary.BigEndian.Uint32(buf[2:6]),
	}
	payload := buf[headerSize:]
	switch f.Type {
	case MsgHeartbeat:
		if len(payload) < 8 {
			return Frame{}, ErrFrameTooShort
		}
		f.LeaderX = math.Float32frombits(binary.BigEndian.Uint32(payload[0:4]))
		f.LeaderY = math.Float32frombits(binary.BigEndian.Uint32(payload[4:8]))
	case MsgElectionAcclaim:
		if len(payload) < 1 {
			return Frame{}, ErrFrameTooShort
		}
		f.ClaimantID = payload[0]
	case MsgCoordinator:
		// empty payload, nothing to parse
	case MsgTaskClaim:
		if len(payload) < 8 {
			return Frame{}, ErrFrameTooShort
		}
		f.TaskID = binary.BigEndian.Uint32(payload[0:4])
		f.Utility = math.Float32frombits(binary.BigEndian.Uint32(payload[4:8]))
	case MsgTaskConflict:
		if len(payload) < 5 {
			return Frame{}, ErrFrameTooShort
		}
		f.TaskID = binary.BigEndian.Uint32(payload[0:4])
		f.WinnerID = payload[4]
	default:
		return Frame{}, ErrUnknownMsgType
	}
	return f, nil
}
