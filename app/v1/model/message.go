package model

import "github.com/restylabs/resty/core/entity"

var messageDescriptor = entity.Descriptor{
	Table: entity.TableName("MessageModel"),
	Fields: []entity.Field{
		{Column: "from_id"},
		{Column: "to_id"},
		{Column: "message", Searchable: true},
	},
}

// Message is a note sent from one user to another.
type Message struct {
	id      int64
	FromID  int64
	ToID    int64
	Message string
}

// NewMessage is the entity factory for messages.
func NewMessage() entity.Entity { return &Message{} }

func (m *Message) Descriptor() entity.Descriptor { return messageDescriptor }

func (m *Message) ID() int64      { return m.id }
func (m *Message) SetID(id int64) { m.id = id }

func (m *Message) FieldValues() []interface{} {
	return []interface{}{m.FromID, m.ToID, m.Message}
}

func (m *Message) FieldPointer(column string) interface{} {
	switch column {
	case "id":
		return &m.id
	case "from_id":
		return &m.FromID
	case "to_id":
		return &m.ToID
	case "message":
		return &m.Message
	}
	return nil
}

// Serialize renders the message to JSON.
func (m *Message) Serialize(included []string) ([]byte, error) {
	return entity.Serialize(m, included)
}
