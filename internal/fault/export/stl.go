package export

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d"
)

// Triangles splits every quad of m into two triangles.
func Triangles(m RenderMesh) []*model3d.Triangle {
	tris := make([]*model3d.Triangle, 0, 2*m.Quads())
	for q := 0; q < m.Quads(); q++ {
		var v [4]model3d.Coord3D
		for k := range v {
			x := m.Vertex(q, k)
			v[k] = model3d.XYZ(x.X, x.Y, x.Z)
		}
		tris = append(tris, &model3d.Triangle{v[0], v[1], v[2]}, &model3d.Triangle{v[0], v[2], v[3]})
	}
	return tris
}

// WriteSTL writes the quads of m as a binary STL mesh.
func WriteSTL(w io.Writer, m RenderMesh) error {
	if m.Quads() == 0 {
		return errors.New("write stl: mesh has no quads")
	}
	mesh := model3d.NewMeshTriangles(Triangles(m))
	if _, err := w.Write(mesh.EncodeSTL()); err != nil {
		return errors.Wrap(err, "write stl")
	}
	return nil
}

// SaveSTL writes the quads of m to an STL file at path.
func SaveSTL(path string, m RenderMesh) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create stl file")
	}
	if err := WriteSTL(f, m); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close stl file")
}
