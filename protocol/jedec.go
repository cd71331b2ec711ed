package protocol

import "fmt"

// DeviceID is the 3-byte JEDEC identifier returned by CmdReadJEDECID.
type DeviceID struct {
	Manufacturer byte
	MemoryType   byte
	Capacity     byte
}

// knownDevices maps JEDEC identifiers to part names.
var knownDevices = map[DeviceID]string{
	{0xEF, 0x40, 0x14}: "W25Q80",
	{0xEF, 0x40, 0x15}: "W25Q16",
	{0xEF, 0x40, 0x16}: "W25Q32",
	{0xEF, 0x40, 0x17}: "W25Q64",
	{0xEF, 0x40, 0x18}: "W25Q128",
	{0xEF, 0x70, 0x18}: "W25Q128JV-IM",
	{0xC2, 0x20, 0x16}: "MX25L3233F",
	{0x1F, 0x87, 0x01}: "AT25SF321",
	{0x9D, 0x60, 0x16}: "IS25LP032",
}

// Name returns the part name for a known identifier.
func (id DeviceID) Name() (string, bool) {
	name, ok := knownDevices[id]
	return name, ok
}

// Size returns the device capacity in bytes derived from the capacity
// code, or 0 when the code is outside the plausible range.
func (id DeviceID) Size() uint32 {
	if id.Capacity < 0x10 || id.Capacity > 0x19 {
		return 0
	}
	return 1 << id.Capacity
}

func (id DeviceID) String() string {
	s := fmt.Sprintf("%02x%02x%02x", id.Manufacturer, id.MemoryType, id.Capacity)
	if name, ok := id.Name(); ok {
		s += " (" + name + ")"
	}
	return s
}

// ParseJEDECID parses the 3-byte response of CmdReadJEDECID. An all-zero
// or all-ones response means no device answered; typically the chip
// select is wrong or the device is in deep power-down.
func ParseJEDECID(data []byte) (DeviceID, error) {
	if len(data) != 3 {
		return DeviceID{}, fmt.Errorf("JEDEC ID must be 3 bytes, got %d", len(data))
	}
	if data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x00 {
		return DeviceID{}, fmt.Errorf("no response from device (bus reads low)")
	}
	if data[0] == 0xFF && data[1] == 0xFF && data[2] == 0xFF {
		return DeviceID{}, fmt.Errorf("no response from device (bus reads high)")
	}
	return DeviceID{
		Manufacturer: data[0],
		MemoryType:   data[1],
		Capacity:     data[2],
	}, nil
}
