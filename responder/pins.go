package responder

// Output pin assignments on the uo_out bus.
const (
	PinTX             = 0
	PinOversampleTick = 1
	PinBaudTick       = 2
	PinTrigger        = 3
)

// PinRX is the ui_in bit carrying the receive line.
const PinRX = 0

// Inputs are the boundary signals sampled on a clock edge.
type Inputs struct {
	// ResetN is the synchronous, active-low reset.
	ResetN bool
	// Enable gates every state update. A disabled responder holds state.
	Enable bool
	// RX is the serial receive line, idle high.
	RX bool
}

// IdleInputs returns inputs for a running responder with an idle line.
func IdleInputs() Inputs {
	return Inputs{ResetN: true, Enable: true, RX: true}
}

// InputsFromPins builds Inputs from the ui_in bus and the control pins.
func InputsFromPins(uiIn uint8, rstN, ena bool) Inputs {
	return Inputs{
		ResetN: rstN,
		Enable: ena,
		RX:     uiIn&(1<<PinRX) != 0,
	}
}

// Outputs are the boundary signals after a clock edge.
type Outputs struct {
	// TX is the serial transmit line, idle high.
	TX bool
	// OversampleTick is the receive-side divider pulse.
	OversampleTick bool
	// BaudTick is the bit-period divider pulse.
	BaudTick bool
	// Trigger is the command-recognized pulse.
	Trigger bool
}

// UOOut packs the outputs onto the uo_out bus.
func (o Outputs) UOOut() uint8 {
	var v uint8
	if o.TX {
		v |= 1 << PinTX
	}
	if o.OversampleTick {
		v |= 1 << PinOversampleTick
	}
	if o.BaudTick {
		v |= 1 << PinBaudTick
	}
	if o.Trigger {
		v |= 1 << PinTrigger
	}
	return v
}
