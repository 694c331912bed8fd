package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register the KMS drivers that KMS_KEY_URI may name
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperDecrypter opens sealed environment values with a gocloud secrets.Keeper.
type KeeperDecrypter struct {
	keeper *secrets.Keeper
}

// OpenKeeperDecrypter opens the keeper named by keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKeeperDecrypter(ctx context.Context, keyURI string) (*KeeperDecrypter, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return NewKeeperDecrypter(keeper), nil
}

// NewKeeperDecrypter wraps an already opened keeper.
func NewKeeperDecrypter(keeper *secrets.Keeper) *KeeperDecrypter {
	return &KeeperDecrypter{keeper: keeper}
}

// Decrypt opens ciphertext produced by the same key.
func (k *KeeperDecrypter) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return k.keeper.Decrypt(ctx, ciphertext)
}

// Encrypt seals plaintext for use as an enc: environment value.
func (k *KeeperDecrypter) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return k.keeper.Encrypt(ctx, plaintext)
}

// Close releases the keeper.
func (k *KeeperDecrypter) Close() error {
	return k.keeper.Close()
}
