package types

// PublicKey is any key whose raw form can be measured and exported.
type PublicKey interface {
	Len() int
	Bytes() []byte
}

// ReceivingPublicKey is a public key that other parties encrypt to.
type ReceivingPublicKey interface {
	PublicKey
	NewEncrypter() (Encrypter, error)
	// Export returns the portable text encoding of this public key
	Export() string
}
