package streaming

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// Codec сериализует события в JSON, при необходимости сжимая их snappy
type Codec struct {
	Compress bool
}

// Encode сериализует событие
func (c Codec) Encode(event TransactionEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации события: %w", err)
	}
	if c.Compress {
		return snappy.Encode(nil, data), nil
	}
	return data, nil
}

// Decode восстанавливает событие из сообщения
func (c Codec) Decode(payload []byte) (TransactionEvent, error) {
	data := payload
	if c.Compress {
		decompressed, err := snappy.Decode(nil, payload)
		if err != nil {
			return TransactionEvent{}, fmt.Errorf("ошибка распаковки сообщения: %w", err)
		}
		data = decompressed
	}

	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return TransactionEvent{}, fmt.Errorf("ошибка декодирования сообщения: %w", err)
	}
	return event, nil
}
