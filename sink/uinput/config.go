// Package uinput creates a relative pointing device through Linux /dev/uinput.
package uinput

type Config struct {
	Device  string `help:"uinput control device" default:"/dev/uinput" env:"JOYMOUSE_UINPUT_DEVICE"`
	Name    string `help:"Name of the created input device" default:"joymouse" env:"JOYMOUSE_UINPUT_NAME"`
	Vendor  uint16 `help:"USB vendor id reported by the device" default:"4617" env:"JOYMOUSE_UINPUT_VENDOR"`
	Product uint16 `help:"USB product id reported by the device" default:"1" env:"JOYMOUSE_UINPUT_PRODUCT"`
}
