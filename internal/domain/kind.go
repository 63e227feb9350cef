package domain

// Kind identifies which wire structure an artifact carries. The set is
// closed: an artifact is either an announcement or a sealed envelope.
type Kind int

const (
	KindUnknown Kind = iota
	KindOpenBox
	KindSealedBox
)

// kindExts maps each kind to its file-extension-like transport tag. All
// tag dispatch goes through this table and its inverse.
var kindExts = map[Kind]string{
	KindOpenBox:   "openbox",
	KindSealedBox: "sealedbox",
}

var extKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindExts))
	for k, ext := range kindExts {
		m[ext] = k
	}
	return m
}()

// Ext returns the transport tag for the kind, or "" for KindUnknown.
func (k Kind) Ext() string { return kindExts[k] }

func (k Kind) String() string {
	if ext, ok := kindExts[k]; ok {
		return ext
	}
	return "unknown"
}

// KindForExt resolves a transport tag back to its kind.
func KindForExt(ext string) (Kind, bool) {
	k, ok := extKinds[ext]
	return k, ok
}

// Artifact is one tagged document moving through the transport.
type Artifact struct {
	Kind Kind
	Name string // transport-unique name, without the tag suffix
	Data []byte // envelope JSON
}
