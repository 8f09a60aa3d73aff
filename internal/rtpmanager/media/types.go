package media

// PlayRequest is a request to stream a local audio file to a session's
// remote RTP endpoint.
type PlayRequest struct {
	CallID    string // SIP Call-ID for tracking
	File      string // path to audio file (e.g. "audio/demo.wav")
	Codec     string // selected codec, name or payload type string
	LocalAddr string // local interface to bind the send socket to
	LocalPort int    // local RTP port already allocated for this session
	Endpoint  string // remote RTP IP
	Port      int    // remote RTP port

	// OnDigit fires for every DTMF digit detected from the far end
	// while the stream socket is open. May be nil.
	OnDigit func(callID string, digit rune)

	OnComplete func(callID string, framesSent int) error
	OnStopped  func(callID string)
	OnError    func(callID string, err error)
}
