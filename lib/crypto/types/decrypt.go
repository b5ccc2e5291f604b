package types

// decrypts data
type Decrypter interface {
	// decrypt a block of data
	// return decrypted block or nil and error if error happens
	Decrypt(data []byte) ([]byte, error)
}

// encrypts data
type Encrypter interface {
	// encrypt a block of data
	// return encrypted block or nil and error if an error happened
	Encrypt(data []byte) ([]byte, error)
}

// PrivateEncryptionKey is the receiving half of an asymmetric key pair.
type PrivateEncryptionKey interface {
	// create a new decryption object for this private key to decrypt data encrypted to our public key
	// returns decrypter or nil and error if the private key is in a bad format
	NewDecrypter() (Decrypter, error)
	// Export returns the portable text encoding of this private key
	Export() string
	// Zero clears all sensitive data from the private key
	Zero()
}
