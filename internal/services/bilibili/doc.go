// Package bilibili talks to the Bilibili web APIs favsort depends on.
//
// Auth drives the QR-code login flow against the passport service and
// harvests the session cookies a successful scan produces. Client performs
// authenticated favorites-catalog reads (folder list, paginated folder
// contents) and mutations (create folder, move item) with CSRF enforcement.
// CredentialStore persists the harvested cookie between invocations.
//
// Both clients accept an injected HTTPDoer and pacing hooks so tests can run
// against httptest servers without real delays.
package bilibili
