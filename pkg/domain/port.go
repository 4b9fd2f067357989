package domain

// OutputPort is the name of the single output port every node declares.
const OutputPort = "out"

// Direction tells whether a port receives or produces values.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// PortSpec describes a named, typed port.
type PortSpec struct {
	Name      string    `json:"name" yaml:"name"`
	Direction Direction `json:"direction" yaml:"direction"`
	DataType  DataType  `json:"dataType" yaml:"dataType"`
}

// In declares an input port.
func In(name string, dt DataType) PortSpec {
	return PortSpec{Name: name, Direction: DirectionIn, DataType: dt}
}

// Out declares the output port.
func Out(dt DataType) PortSpec {
	return PortSpec{Name: OutputPort, Direction: DirectionOut, DataType: dt}
}
