package device

// Object is a node in a device's file hierarchy. It is implemented only by
// *Folder and *File; use a type switch to tell them apart.
type Object interface {
	ObjectName() string
	isObject()
}

// Folder is a directory on the device. Children keep the order the device
// reported them in.
type Folder struct {
	Name     string
	Children []Object
}

// File is a leaf on the device.
type File struct {
	Name string
	Size int64
}

func (f *Folder) ObjectName() string { return f.Name }
func (f *Folder) isObject()          {}

func (f *File) ObjectName() string { return f.Name }
func (f *File) isObject()          {}

// Add appends children and returns the folder so literals can be nested.
func (f *Folder) Add(children ...Object) *Folder {
	f.Children = append(f.Children, children...)
	return f
}

// NewFolder creates a folder with the given children.
func NewFolder(name string, children ...Object) *Folder {
	return &Folder{Name: name, Children: children}
}

// NewFile creates a file leaf.
func NewFile(name string) *File {
	return &File{Name: name}
}
