// Package usb implements the USB serial echo side of the firmware: device
// identity, the class/transport contracts a board provides, the transport
// pump and echo session tasks, and an in-memory loopback transport.
package usb

import (
	"encoding/binary"
	"errors"
)

// USB Descriptor Types (USB 2.0 Spec Table 9-5).
const (
	DescriptorTypeDevice        = 0x01
	DescriptorTypeConfiguration = 0x02
	DescriptorTypeString        = 0x03
)

// Device class triple announcing an Interface Association Descriptor based
// composite device. Some hosts need it to bind a CDC-ACM function that
// spans two interfaces.
const (
	ClassMisc             = 0xEF
	SubclassCommon        = 0x02
	ProtocolInterfaceAssn = 0x01
)

// Configuration attribute bits.
const (
	ConfigAttrBusPowered = 0x80 // Bus-powered (required)
)

// Sizes of the fixed descriptors and buffers.
const (
	DeviceDescriptorSize        = 18
	ConfigurationDescriptorSize = 9
	MaxPacketSize0              = 64 // Control endpoint
	MaxPacketSize               = 64 // Full-speed bulk endpoints
)

// DeviceConfig identifies the device to the host.
type DeviceConfig struct {
	VendorID          uint16
	ProductID         uint16
	Manufacturer      string
	Product           string
	SerialNumber      string
	DeviceClass       uint8
	DeviceSubClass    uint8
	DeviceProtocol    uint8
	MaxPowerMilliamps uint16
	MaxPacketSize0    uint8
}

// DefaultDeviceConfig returns the identity used by every board.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		VendorID:          0xC0DE,
		ProductID:         0xCAFE,
		Manufacturer:      "hueloop",
		Product:           "USB-serial echo",
		SerialNumber:      "12345678",
		DeviceClass:       ClassMisc,
		DeviceSubClass:    SubclassCommon,
		DeviceProtocol:    ProtocolInterfaceAssn,
		MaxPowerMilliamps: 100,
		MaxPacketSize0:    MaxPacketSize0,
	}
}

// MaxPowerUnits returns the bMaxPower field, in 2 mA units.
func (c *DeviceConfig) MaxPowerUnits() uint8 {
	units := (c.MaxPowerMilliamps + 1) / 2
	if units > 0xFF {
		units = 0xFF
	}
	return uint8(units)
}

// String descriptor indices used by DeviceDescriptor.
const (
	StringIndexManufacturer = 1
	StringIndexProduct      = 2
	StringIndexSerial       = 3
)

// DeviceDescriptor represents a USB device descriptor (18 bytes).
type DeviceDescriptor struct {
	USBVersion        uint16 // USB specification version (BCD)
	DeviceClass       uint8  // Class code
	DeviceSubClass    uint8  // Subclass code
	DeviceProtocol    uint8  // Protocol code
	MaxPacketSize0    uint8  // Max packet size for EP0
	VendorID          uint16 // Vendor ID
	ProductID         uint16 // Product ID
	DeviceVersion     uint16 // Device release number (BCD)
	ManufacturerIndex uint8  // Index of manufacturer string
	ProductIndex      uint8  // Index of product string
	SerialNumberIndex uint8  // Index of serial number string
	NumConfigurations uint8  // Number of configurations
}

// DeviceDescriptor builds the device descriptor for c.
func (c *DeviceConfig) DeviceDescriptor() DeviceDescriptor {
	return DeviceDescriptor{
		USBVersion:        0x0200,
		DeviceClass:       c.DeviceClass,
		DeviceSubClass:    c.DeviceSubClass,
		DeviceProtocol:    c.DeviceProtocol,
		MaxPacketSize0:    c.MaxPacketSize0,
		VendorID:          c.VendorID,
		ProductID:         c.ProductID,
		DeviceVersion:     0x0100,
		ManufacturerIndex: StringIndexManufacturer,
		ProductIndex:      StringIndexProduct,
		SerialNumberIndex: StringIndexSerial,
		NumConfigurations: 1,
	}
}

// MarshalTo serializes the device descriptor to buf.
// Returns the number of bytes written (always 18 if buf is large enough).
func (d *DeviceDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < DeviceDescriptorSize {
		return 0
	}
	buf[0] = DeviceDescriptorSize
	buf[1] = DescriptorTypeDevice
	binary.LittleEndian.PutUint16(buf[2:4], d.USBVersion)
	buf[4] = d.DeviceClass
	buf[5] = d.DeviceSubClass
	buf[6] = d.DeviceProtocol
	buf[7] = d.MaxPacketSize0
	binary.LittleEndian.PutUint16(buf[8:10], d.VendorID)
	binary.LittleEndian.PutUint16(buf[10:12], d.ProductID)
	binary.LittleEndian.PutUint16(buf[12:14], d.DeviceVersion)
	buf[14] = d.ManufacturerIndex
	buf[15] = d.ProductIndex
	buf[16] = d.SerialNumberIndex
	buf[17] = d.NumConfigurations
	return DeviceDescriptorSize
}

// MarshalConfigurationHeader writes the 9-byte configuration descriptor
// header for a configuration of totalLength bytes and numInterfaces
// interfaces. Returns 0 if buf is too small.
func (c *DeviceConfig) MarshalConfigurationHeader(buf []byte, totalLength uint16, numInterfaces uint8) int {
	if len(buf) < ConfigurationDescriptorSize {
		return 0
	}
	buf[0] = ConfigurationDescriptorSize
	buf[1] = DescriptorTypeConfiguration
	binary.LittleEndian.PutUint16(buf[2:4], totalLength)
	buf[4] = numInterfaces
	buf[5] = 1 // bConfigurationValue
	buf[6] = 0 // no configuration string
	buf[7] = ConfigAttrBusPowered
	buf[8] = c.MaxPowerUnits()
	return ConfigurationDescriptorSize
}

// ErrDescriptorLayout is returned by Apply when the stack's descriptor
// buffers are not a device descriptor and a configuration descriptor.
var ErrDescriptorLayout = errors.New("usb: unexpected descriptor layout")

// Apply patches a USB stack's raw descriptors in place: device is
// overwritten with c's device descriptor and the configuration header takes
// c's attributes and power. The stack's total length and interface count
// are kept, since the interfaces that follow the header are its own.
func (c *DeviceConfig) Apply(device, configuration []byte) error {
	if len(device) < DeviceDescriptorSize || device[1] != DescriptorTypeDevice {
		return ErrDescriptorLayout
	}
	if len(configuration) < ConfigurationDescriptorSize || configuration[1] != DescriptorTypeConfiguration {
		return ErrDescriptorLayout
	}

	desc := c.DeviceDescriptor()
	desc.MarshalTo(device)

	total := binary.LittleEndian.Uint16(configuration[2:4])
	c.MarshalConfigurationHeader(configuration, total, configuration[4])
	return nil
}
