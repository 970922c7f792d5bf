package api

// ChatAPI defines the interface for the chat backend client.
// *Client satisfies this interface. TUI and tests can use mock implementations.
type ChatAPI interface {
	ListThreads() ([]Thread, error)
	CreateThread(title string) (*Thread, error)
	ListMessages(threadID string) ([]Message, error)
	Chat(threadID, query string) (*ChatResponse, error)
}

var _ ChatAPI = (*Client)(nil)
