package proto

import (
	"encoding/json"
	"testing"

	"dust-and-lead/server/internal/sim"
)

func TestClientMessageInputMapping(t *testing.T) {
	raw := `{"ver":1,"type":"input","seq":12,"moveX":0.5,"moveY":-1,"aim":1.25,"cursorX":640,"cursorY":480,"buttons":3}`
	var msg ClientMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	in := msg.Input()
	want := sim.InputState{Sequence: 12, MoveX: 0.5, MoveY: -1, Aim: 1.25, CursorX: 640, CursorY: 480, Buttons: 3}
	if in != want {
		t.Fatalf("input = %+v, want %+v", in, want)
	}
	if in.Buttons&sim.ButtonFire == 0 || in.Buttons&sim.ButtonRoll == 0 {
		t.Fatalf("button bits did not survive the wire: %08b", in.Buttons)
	}
}

func TestStateMessageCarriesPerRecipientAck(t *testing.T) {
	msg := StateMessage{
		Ver:  ProtocolVersion,
		Type: TypeState,
		Ack:  42,
		State: sim.Snapshot{
			Tick:    100,
			Players: []sim.PlayerRecord{{ID: 1, X: 10, Y: 20}},
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded StateMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Ack != 42 || decoded.State.Tick != 100 {
		t.Fatalf("round trip lost fields: %+v", decoded)
	}
}
