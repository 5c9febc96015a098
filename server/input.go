package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownMessage = errors.New("unknown message type")
)

// InputSet 已识别按键的位集合；未识别的按键在解析时丢弃
type InputSet uint8

const (
	InputUp InputSet = 1 << iota
	InputDown
	InputLeft
	InputRight
	InputAttack1
	InputAttack2
	InputSprint
)

// keyCodes 客户端 KeyboardEvent.code 到位的映射（主键与别名映射到同一位）
var keyCodes = map[string]InputSet{
	"ArrowUp":    InputUp,
	"KeyK":       InputUp,
	"ArrowDown":  InputDown,
	"KeyJ":       InputDown,
	"ArrowLeft":  InputLeft,
	"KeyH":       InputLeft,
	"ArrowRight": InputRight,
	"KeyL":       InputRight,
	"KeyA":       InputAttack1,
	"KeyS":       InputAttack2,
	"ShiftLeft":  InputSprint,
	"ShiftRight": InputSprint,
}

func (s InputSet) Has(bit InputSet) bool { return s&bit != 0 }

// ParseKeys 将 {code: bool} 转为位集合，值为 false 的按键视为未按下
func ParseKeys(keys map[string]bool) InputSet {
	var s InputSet
	for code, down := range keys {
		if !down {
			continue
		}
		if bit, ok := keyCodes[code]; ok {
			s |= bit
		}
	}
	return s
}

// InputMessage 入站消息的 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"input","keys":{"ArrowUp":true}}
type InputMessage struct {
	Type string          `json:"type"`
	Keys map[string]bool `json:"keys"`
}

// ParseInput 解析一条入站消息；keys 缺省时返回 ok=false（保持原有按键）
func ParseInput(payload []byte) (keys InputSet, ok bool, err error) {
	var im InputMessage
	if err := json.Unmarshal(payload, &im); err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if im.Type != "input" {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownMessage, im.Type)
	}
	if im.Keys == nil {
		return 0, false, nil
	}
	return ParseKeys(im.Keys), true, nil
}
