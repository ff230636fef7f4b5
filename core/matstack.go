package core

import "github.com/go-gl/mathgl/mgl32"

// MatrixStack is a transform hierarchy helper: a current matrix plus a save
// stack. Transform methods post-multiply the current matrix, so the last
// applied operation acts in the most local coordinate space.
type MatrixStack struct {
	stack   []mgl32.Mat4
	current mgl32.Mat4
}

// NewMatrixStack returns a stack with the identity as its current matrix.
func NewMatrixStack() *MatrixStack {
	return &MatrixStack{current: mgl32.Ident4()}
}

// Push saves the current matrix.
func (s *MatrixStack) Push() {
	s.stack = append(s.stack, s.current)
}

// Pop restores the most recently pushed matrix. Panics on underflow; match
// every Push with a Pop.
func (s *MatrixStack) Pop() {
	if len(s.stack) == 0 {
		panic("core: matrix stack underflow")
	}
	s.current = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// Peek returns the current matrix.
func (s *MatrixStack) Peek() mgl32.Mat4 {
	return s.current
}

// Load replaces the current matrix.
func (s *MatrixStack) Load(m mgl32.Mat4) {
	s.current = m
}

// Mul post-multiplies the current matrix by m.
func (s *MatrixStack) Mul(m mgl32.Mat4) {
	s.current = s.current.Mul4(m)
}

// Translate post-multiplies a translation.
func (s *MatrixStack) Translate(x, y, z float32) {
	s.Mul(mgl32.Translate3D(x, y, z))
}

// Scale post-multiplies a scale.
func (s *MatrixStack) Scale(x, y, z float32) {
	s.Mul(mgl32.Scale3D(x, y, z))
}

// Rotate post-multiplies a rotation of angle radians about axis.
func (s *MatrixStack) Rotate(angle float32, axis mgl32.Vec3) {
	s.Mul(mgl32.HomogRotate3D(angle, axis))
}

// Depth reports how many matrices are saved on the stack.
func (s *MatrixStack) Depth() int {
	return len(s.stack)
}

// Reset drops all saved matrices and loads the identity.
func (s *MatrixStack) Reset() {
	s.stack = s.stack[:0]
	s.current = mgl32.Ident4()
}
