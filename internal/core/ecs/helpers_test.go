package ecs

import "github.com/zeusync/deltasync/pkg/encoding"

type testPosition struct {
	Base
	X, Y int32
}

func (*testPosition) Type() ComponentType { return TypePosition }

func (p *testPosition) Encode() []byte {
	w := encoding.NewWriter(8)
	w.Int32(p.X)
	w.Int32(p.Y)
	return w.Bytes()
}

func (p *testPosition) Decode(data []byte) error {
	r := encoding.NewReader(data)
	p.X, p.Y = r.Int32(), r.Int32()
	return r.Expect()
}

type testSpeed struct {
	Base
	Value float32
}

func (*testSpeed) Type() ComponentType { return TypeSpeed }

func (s *testSpeed) Encode() []byte {
	w := encoding.NewWriter(4)
	w.Float32(s.Value)
	return w.Bytes()
}

func (s *testSpeed) Decode(data []byte) error {
	r := encoding.NewReader(data)
	s.Value = r.Float32()
	return r.Expect()
}

// testOtherPosition shares the Position tag with testPosition.
type testOtherPosition struct {
	testPosition
}

type testLabel struct {
	Local
	Text string
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	MustRegister(r, func() *testPosition { return &testPosition{} })
	MustRegister(r, func() *testSpeed { return &testSpeed{} })
	return r
}
