package qr

// Matrix is a square grid of QR modules. A true cell is a dark module.
// Matrices are built by encoders and are read-only afterwards.
type Matrix struct {
	size int
	bits []bool
}

func newMatrix(size int) *Matrix {
	return &Matrix{size: size, bits: make([]bool, size*size)}
}

// Size returns the side length of the matrix in cells.
func (m *Matrix) Size() int {
	return m.size
}

// Dark reports whether the cell at (x, y) is dark. Cells outside the
// matrix are light.
func (m *Matrix) Dark(x, y int) bool {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return false
	}
	return m.bits[y*m.size+x]
}

func (m *Matrix) set(x, y int) {
	m.bits[y*m.size+x] = true
}

// scaleModules lays a module grid (quiet zone included) onto a square of at
// least size cells, using the largest whole number of cells per module that
// fits and centring the leftover as padding. A grid bigger than size is
// returned at one cell per module.
func scaleModules(modules [][]bool, size int) *Matrix {
	n := len(modules)
	out := size
	if out < n {
		out = n
	}
	multiple := out / n
	pad := (out - n*multiple) / 2

	m := newMatrix(out)
	for y, row := range modules {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0 := pad + x*multiple
			y0 := pad + y*multiple
			for dy := 0; dy < multiple; dy++ {
				for dx := 0; dx < multiple; dx++ {
					m.set(x0+dx, y0+dy)
				}
			}
		}
	}
	return m
}
