package cartridge

import "fmt"

// NewMapper is a tagged-variant constructor: one arm per supported
// mapper id, each a concrete struct satisfying Mapper.
func NewMapper(id uint8, cart *Cartridge) (Mapper, error) {
	switch id {
	case 0:
		return NewNROM(cart), nil
	case 1:
		return NewMMC1(cart), nil
	case 2:
		return NewUxROM(cart), nil
	case 3:
		return NewCNROM(cart), nil
	case 4:
		return NewMMC3(cart), nil
	case 7:
		return NewAxROM(cart), nil
	case 11:
		return NewColorDreams(cart), nil
	case 66:
		return NewGxROM(cart), nil
	default:
		return nil, fmt.Errorf("mapper %d not implemented", id)
	}
}
