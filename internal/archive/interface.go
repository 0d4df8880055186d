package archive

// Store is the contract for the campaign-run archive. Writes are
// best-effort and never sit on the request path.
type Store interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(filename string) error
}
