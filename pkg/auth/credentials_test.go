package auth

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	// Use mock manager for reliable testing
	manager, mockStore := NewMockManager()

	// Test storing credentials
	account := &Account{
		Username:     "testreader",
		Password:     "correct horse battery staple",
		LastModified: time.Now(),
	}

	err := manager.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	// Test retrieving credentials
	retrieved, err := manager.Retrieve("testreader")
	if err != nil {
		t.Errorf("Failed to retrieve account: %v", err)
	}

	if retrieved.Username != account.Username {
		t.Errorf("Username mismatch: got %s, want %s", retrieved.Username, account.Username)
	}
	if retrieved.Password != account.Password {
		t.Errorf("Password mismatch: got %s, want %s", retrieved.Password, account.Password)
	}

	// Test listing accounts
	accounts, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(accounts) == 0 {
		t.Error("Expected at least one account in list")
	}

	// Test sanitization
	sanitized := SanitizeAccount(account)
	if sanitized.Password == account.Password {
		t.Error("Password should be masked")
	}
	if sanitized.Username != account.Username {
		t.Error("Username should not be masked")
	}

	// Test deletion
	err = manager.Delete("testreader")
	if err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}

	// Verify deletion
	_, err = manager.Retrieve("testreader")
	if err == nil {
		t.Error("Expected error retrieving deleted account")
	}

	// Verify mock store state
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(&Account{Password: "secret"}); err == nil {
		t.Error("Expected error storing account without username")
	}
	if err := manager.Store(&Account{Username: "reader"}); err == nil {
		t.Error("Expected error storing account without password")
	}
}

func TestEncryptedFileStore(t *testing.T) {
	// Create a temporary file
	tempFile := filepath.Join(t.TempDir(), "test_creds.enc")

	// Set test passphrase
	os.Setenv("AO3WRAPPED_PASSPHRASE", "test_passphrase_123")
	defer os.Unsetenv("AO3WRAPPED_PASSPHRASE")

	// Create store
	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	// Test operations
	account := &Account{
		Username: "encrypted_reader",
		Password: "encrypted_password",
	}

	// Store
	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store in encrypted file: %v", err)
	}

	// Retrieve
	retrieved, err := store.Retrieve("encrypted_reader")
	if err != nil {
		t.Errorf("Failed to retrieve from encrypted file: %v", err)
	}

	if retrieved.Password != account.Password {
		t.Errorf("Password mismatch after encryption/decryption")
	}

	// Verify file is actually encrypted
	fileContent, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatal(err)
	}

	// File should not contain plaintext credentials
	if bytes.Contains(fileContent, []byte("encrypted_password")) {
		t.Error("File contains plaintext password")
	}
}

func TestEnvironmentStore(t *testing.T) {
	// Set environment variables
	os.Setenv("AO3_USERNAME", "env_reader")
	os.Setenv("AO3_PASSWORD", "env_password")
	defer os.Unsetenv("AO3_USERNAME")
	defer os.Unsetenv("AO3_PASSWORD")

	store := NewEnvironmentStore()

	// Test retrieve
	account, err := store.Retrieve("")
	if err != nil {
		t.Errorf("Failed to retrieve from environment: %v", err)
	}

	if account.Username != "env_reader" {
		t.Errorf("Username mismatch: got %s, want env_reader", account.Username)
	}
	if account.Password != "env_password" {
		t.Errorf("Password mismatch: got %s, want env_password", account.Password)
	}

	// Asking for a different user should not match
	if _, err := store.Retrieve("someone_else"); err == nil {
		t.Error("Expected error retrieving mismatched username")
	}

	// Test that store is not supported
	err = store.Store(&Account{})
	if err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
}

func TestRetrieveDefaultPrefersEnvironment(t *testing.T) {
	os.Setenv("AO3_USERNAME", "env_reader")
	os.Setenv("AO3_PASSWORD", "env_password")
	defer os.Unsetenv("AO3_USERNAME")
	defer os.Unsetenv("AO3_PASSWORD")

	mockStore := NewMockStore()
	_ = mockStore.Store(&Account{Username: "stored_reader", Password: "stored_password"})
	manager := NewMockManagerWithStores(mockStore, NewEnvironmentStore())

	account, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("Failed to retrieve default account: %v", err)
	}
	if account.Username != "env_reader" {
		t.Errorf("Expected environment account, got %s", account.Username)
	}
}

func TestRealManagerWithEncryptedStore(t *testing.T) {
	tempDir := t.TempDir()

	// Set passphrase for testing
	os.Setenv("AO3WRAPPED_PASSPHRASE", "test_passphrase_real_manager")
	defer os.Unsetenv("AO3WRAPPED_PASSPHRASE")

	// Create manager with only encrypted file store (most reliable for testing)
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(tempDir, "credentials.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	manager := NewMockManagerWithStores(encryptedStore)

	// Test storing credentials
	account := &Account{
		Username:     "realreader",
		Password:     "real_password",
		LastModified: time.Now(),
	}

	err = manager.Store(account)
	if err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	// Test listing accounts
	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account in list, got %d", len(accounts))
	}

	// Test retrieving credentials
	retrieved, err := manager.Retrieve("realreader")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}

	if retrieved.Username != account.Username {
		t.Errorf("Username mismatch: got %s, want %s", retrieved.Username, account.Username)
	}
	if retrieved.Password != account.Password {
		t.Errorf("Password mismatch: got %s, want %s", retrieved.Password, account.Password)
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	// Test empty store
	accounts, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected 0 accounts, got %d", len(accounts))
	}

	// Test storing and retrieving
	account := &Account{
		Username: "mockreader",
		Password: "mock_password",
	}

	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	// Verify count
	if store.Count() != 1 {
		t.Errorf("Expected 1 account, got %d", store.Count())
	}

	// Test exists
	if !store.Exists("mockreader") {
		t.Error("Account should exist")
	}

	// Test error injection
	store.ListError = fmt.Errorf("injected error")
	_, err = store.List()
	if err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}

func TestMaskString(t *testing.T) {
	if got := maskString("hi"); got != "********" {
		t.Errorf("Short strings should be fully masked, got %s", got)
	}
	masked := maskString("hunter2hunter2")
	if masked == "hunter2hunter2" {
		t.Error("Password should be masked")
	}
	if !strings.HasPrefix(masked, "h") || !strings.HasSuffix(masked, "2") {
		t.Errorf("Mask should keep first and last character, got %s", masked)
	}
}

func TestPrompterReadsPipedCredentials(t *testing.T) {
	read, write, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer read.Close()

	go func() {
		defer write.Close()
		fmt.Fprintln(write, "")
		fmt.Fprintln(write, "piped_reader")
		fmt.Fprintln(write, "piped_password")
	}()

	var out bytes.Buffer
	prompter := &Prompter{
		in:    read,
		lines: bufio.NewReader(read),
		out:   &out,
	}

	account, err := prompter.PromptAccount("")
	if err != nil {
		t.Fatalf("Failed to prompt for account: %v", err)
	}

	if account.Username != "piped_reader" {
		t.Errorf("Username mismatch: got %s, want piped_reader", account.Username)
	}
	if account.Password != "piped_password" {
		t.Errorf("Password mismatch: got %s, want piped_password", account.Password)
	}

	// The empty first line should have triggered a second username prompt
	if got := strings.Count(out.String(), "Enter your username: "); got != 2 {
		t.Errorf("Expected 2 username prompts, got %d", got)
	}
}

func TestPrompterKeepsKnownUsername(t *testing.T) {
	read, write, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer read.Close()

	go func() {
		defer write.Close()
		fmt.Fprintln(write, "only_password")
	}()

	var out bytes.Buffer
	prompter := &Prompter{
		in:    read,
		lines: bufio.NewReader(read),
		out:   &out,
	}

	account, err := prompter.PromptAccount("known_reader")
	if err != nil {
		t.Fatalf("Failed to prompt for account: %v", err)
	}

	if account.Username != "known_reader" {
		t.Errorf("Username mismatch: got %s, want known_reader", account.Username)
	}
	if account.Password != "only_password" {
		t.Errorf("Password mismatch: got %s, want only_password", account.Password)
	}
	if strings.Contains(out.String(), "Enter your username") {
		t.Error("Should not prompt for username when it is already known")
	}
}
