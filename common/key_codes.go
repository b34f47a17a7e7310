package common

// Key codes delivered by the window key callback. Printable keys use their ASCII value, as GLFW does.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	Key0 = 48
	Key1 = 49
	Key2 = 50
	Key3 = 51
	Key4 = 52
	Key5 = 53
	Key6 = 54
	Key7 = 55
	Key8 = 56
	Key9 = 57

	KeyEsc = 256
)
