package mouse

// Button bit masks for virtual mouse input reports.
// These align with the Buttons bitfield in InputState.
const (
	Btn_Left    = 0x01
	Btn_Right   = 0x02
	Btn_Middle  = 0x04
	Btn_Back    = 0x08
	Btn_Forward = 0x10

	buttonMask = 0x1F
)

// DeviceType is the VIIPER device type name of the mouse.
const DeviceType = "mouse"
