package machine

import "io"

// Console wraps a host io.Reader/io.Writer pair as the two opaque files
// mounted at fd 0 and fd 1 on every process's startup. offset is ignored:
// a console is a stream, not a seekable file.
type Console struct {
	in  io.Reader
	out io.Writer
}

// NewConsole returns a Console reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out}
}

// Stdin returns the console's read-only file, installed at fd 0.
func (c *Console) Stdin() File { return consoleIn{c.in} }

// Stdout returns the console's write-only file, installed at fd 1.
func (c *Console) Stdout() File { return consoleOut{c.out} }

type consoleIn struct{ r io.Reader }

func (c consoleIn) Read(buf []byte, offset, length int) (int, error) {
	return c.r.Read(buf[:length])
}
func (c consoleIn) Write(buf []byte, offset, length int) (int, error) {
	return 0, errConsoleReadOnly
}
func (c consoleIn) Close() error { return nil }

type consoleOut struct{ w io.Writer }

func (c consoleOut) Read(buf []byte, offset, length int) (int, error) {
	return 0, errConsoleWriteOnly
}
func (c consoleOut) Write(buf []byte, offset, length int) (int, error) {
	return c.w.Write(buf[:length])
}
func (c consoleOut) Close() error { return nil }

const (
	errConsoleReadOnly  = loaderError("machine: console stdin is not writable")
	errConsoleWriteOnly = loaderError("machine: console stdout is not readable")
)
