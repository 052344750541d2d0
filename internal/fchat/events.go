package fchat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Inbound events, one closed struct per wire code. Frames are decoded here
// once; nothing downstream touches raw JSON.

// Identified is IDN: the identify handshake completed.
type Identified struct {
	Character string `json:"character"`
}

// ChannelMessage is MSG: a message posted in a channel.
type ChannelMessage struct {
	Channel   string `json:"channel"`
	Character string `json:"character"`
	Message   string `json:"message"`
}

// PrivateMessage is PRI.
type PrivateMessage struct {
	Character string `json:"character"`
	Message   string `json:"message"`
}

// ChannelJoin is JCH: a character (possibly the bot) joined a channel.
type ChannelJoin struct {
	Channel   string
	Title     string
	Character string
}

// ChannelLeave is LCH.
type ChannelLeave struct {
	Channel   string `json:"channel"`
	Character string `json:"character"`
}

// Offline is FLN: a character dropped off the network entirely.
type Offline struct {
	Character string `json:"character"`
}

// ChannelUsers is ICH: the initial user list after joining a channel.
type ChannelUsers struct {
	Channel string
	Users   []string
}

// ChannelOps is COL: the channel's moderator list.
type ChannelOps struct {
	Channel string   `json:"channel"`
	Ops     []string `json:"oplist"`
}

// Pong is PIN from the server, acknowledging our probe.
type Pong struct{}

// ServerError is ERR.
type ServerError struct {
	Number  int    `json:"number"`
	Message string `json:"message"`
}

// Variable is VAR: a server-announced tuning variable.
type Variable struct {
	Variable string          `json:"variable"`
	Value    json.RawMessage `json:"value"`
}

type character struct {
	Identity string `json:"identity"`
}

// DecodeEvent parses one wire frame ("XYZ {json}") into its typed event.
// Codes the bot does not consume decode to (nil, nil).
func DecodeEvent(frame []byte) (any, error) {
	s := strings.TrimSpace(string(frame))
	if len(s) < 3 {
		return nil, fmt.Errorf("short frame: %q", s)
	}
	code := s[:3]
	var body []byte
	if len(s) > 4 {
		body = []byte(s[4:])
	} else {
		body = []byte("{}")
	}

	switch code {
	case "IDN":
		var ev Identified
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode IDN: %w", err)
		}
		return &ev, nil
	case "MSG":
		var ev ChannelMessage
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode MSG: %w", err)
		}
		return &ev, nil
	case "PRI":
		var ev PrivateMessage
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode PRI: %w", err)
		}
		return &ev, nil
	case "JCH":
		var raw struct {
			Channel   string    `json:"channel"`
			Title     string    `json:"title"`
			Character character `json:"character"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode JCH: %w", err)
		}
		return &ChannelJoin{Channel: raw.Channel, Title: raw.Title, Character: raw.Character.Identity}, nil
	case "LCH":
		var ev ChannelLeave
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode LCH: %w", err)
		}
		return &ev, nil
	case "FLN":
		var ev Offline
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode FLN: %w", err)
		}
		return &ev, nil
	case "ICH":
		var raw struct {
			Channel string      `json:"channel"`
			Users   []character `json:"users"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode ICH: %w", err)
		}
		ev := &ChannelUsers{Channel: raw.Channel}
		for _, u := range raw.Users {
			ev.Users = append(ev.Users, u.Identity)
		}
		return ev, nil
	case "COL":
		var ev ChannelOps
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode COL: %w", err)
		}
		return &ev, nil
	case "PIN":
		return &Pong{}, nil
	case "ERR":
		var ev ServerError
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode ERR: %w", err)
		}
		return &ev, nil
	case "VAR":
		var ev Variable
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("decode VAR: %w", err)
		}
		return &ev, nil
	}
	return nil, nil
}

// Outbound payloads.

type MSG struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
}

type PRI struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type JCH struct {
	Channel string `json:"channel"`
}

type LCH struct {
	Channel string `json:"channel"`
}

type STA struct {
	Status    string `json:"status"`
	StatusMsg string `json:"statusmsg"`
}

type IDN struct {
	Method        string `json:"method"`
	Account       string `json:"account"`
	Ticket        string `json:"ticket"`
	Character     string `json:"character"`
	ClientName    string `json:"cname"`
	ClientVersion string `json:"cversion"`
}

// EncodeFrame renders an outbound frame. A nil payload yields a bare code
// (PIN has no body).
func EncodeFrame(code string, payload any) ([]byte, error) {
	if payload == nil {
		return []byte(code), nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", code, err)
	}
	return []byte(code + " " + string(body)), nil
}
