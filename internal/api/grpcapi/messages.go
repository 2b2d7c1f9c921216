package grpcapi

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Сообщения сервиса sms.test.SmsTestService. Номера полей совпадают с proto/sms/test/sms_test.proto.

// MenuItem: позиция меню в ответе GetMenu.
type MenuItem struct {
	ID         string
	Article    string
	Name       string
	Price      float64
	IsWeighted bool
	FullPath   string
	Barcodes   []string
}

// GetMenuResponse: ответ GetMenu.
type GetMenuResponse struct {
	Success      bool
	ErrorMessage string
	MenuItems    []MenuItem
}

// OrderItem: позиция заказа.
type OrderItem struct {
	ID       string
	Quantity float64
}

// Order: запрос SendOrder.
type Order struct {
	ID         string
	OrderItems []OrderItem
}

// SendOrderResponse: ответ SendOrder.
type SendOrderResponse struct {
	Success      bool
	ErrorMessage string
}

// wireMessage реализуют сообщения, которые кодируются без сгенерированного кода.
type wireMessage interface {
	marshalWire() []byte
	unmarshalWire(b []byte) error
}

var (
	_ wireMessage = (*MenuItem)(nil)
	_ wireMessage = (*GetMenuResponse)(nil)
	_ wireMessage = (*OrderItem)(nil)
	_ wireMessage = (*Order)(nil)
	_ wireMessage = (*SendOrderResponse)(nil)
)

func (m *MenuItem) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.Article)
	b = appendString(b, 3, m.Name)
	b = appendDouble(b, 4, m.Price)
	b = appendBool(b, 5, m.IsWeighted)
	b = appendString(b, 6, m.FullPath)
	for _, code := range m.Barcodes {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendString(b, code)
	}
	return b
}

func (m *MenuItem) unmarshalWire(b []byte) error {
	*m = MenuItem{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.ID)
		case 2:
			return consumeString(typ, b, &m.Article)
		case 3:
			return consumeString(typ, b, &m.Name)
		case 4:
			return consumeDouble(typ, b, &m.Price)
		case 5:
			return consumeBool(typ, b, &m.IsWeighted)
		case 6:
			return consumeString(typ, b, &m.FullPath)
		case 7:
			var code string
			n, err := consumeString(typ, b, &code)
			if err == nil {
				m.Barcodes = append(m.Barcodes, code)
			}
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *GetMenuResponse) marshalWire() []byte {
	var b []byte
	b = appendBool(b, 1, m.Success)
	b = appendString(b, 2, m.ErrorMessage)
	for i := range m.MenuItems {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, m.MenuItems[i].marshalWire())
	}
	return b
}

func (m *GetMenuResponse) unmarshalWire(b []byte) error {
	*m = GetMenuResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &m.Success)
		case 2:
			return consumeString(typ, b, &m.ErrorMessage)
		case 3:
			var item MenuItem
			n, err := consumeMessage(typ, b, &item)
			if err == nil {
				m.MenuItems = append(m.MenuItems, item)
			}
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *OrderItem) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.ID)
	b = appendDouble(b, 2, m.Quantity)
	return b
}

func (m *OrderItem) unmarshalWire(b []byte) error {
	*m = OrderItem{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.ID)
		case 2:
			return consumeDouble(typ, b, &m.Quantity)
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *Order) marshalWire() []byte {
	var b []byte
	b = appendString(b, 1, m.ID)
	for i := range m.OrderItems {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.OrderItems[i].marshalWire())
	}
	return b
}

func (m *Order) unmarshalWire(b []byte) error {
	*m = Order{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.ID)
		case 2:
			var item OrderItem
			n, err := consumeMessage(typ, b, &item)
			if err == nil {
				m.OrderItems = append(m.OrderItems, item)
			}
			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *SendOrderResponse) marshalWire() []byte {
	var b []byte
	b = appendBool(b, 1, m.Success)
	b = appendString(b, 2, m.ErrorMessage)
	return b
}

func (m *SendOrderResponse) unmarshalWire(b []byte) error {
	*m = SendOrderResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &m.Success)
		case 2:
			return consumeString(typ, b, &m.ErrorMessage)
		default:
			return skipField(num, typ, b)
		}
	})
}

// Значения по умолчанию proto3 не пишутся.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 && !math.Signbit(v) {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func consumeFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		b = b[n:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if typ != protowire.BytesType {
		return 0, fmt.Errorf("unexpected wire type %d for string", typ)
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("unexpected wire type %d for bool", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = protowire.DecodeBool(v)
	return n, nil
}

func consumeDouble(typ protowire.Type, b []byte, dst *float64) (int, error) {
	if typ != protowire.Fixed64Type {
		return 0, fmt.Errorf("unexpected wire type %d for double", typ)
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = math.Float64frombits(v)
	return n, nil
}

func consumeMessage(typ protowire.Type, b []byte, dst wireMessage) (int, error) {
	if typ != protowire.BytesType {
		return 0, fmt.Errorf("unexpected wire type %d for message", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if err := dst.unmarshalWire(v); err != nil {
		return 0, err
	}
	return n, nil
}
