// Package mocks provides test doubles for ports interfaces.
//
// These mocks are designed to be simple, thread-safe, in-memory implementations
// suitable for unit testing. Each mock provides:
//
//   - Default behavior that returns reasonable test values
//   - Callback functions (xxxFn) for customizing behavior per test
//   - Helper methods for setting state directly
//
// # Usage Example
//
//	func TestStore(t *testing.T) {
//		repo := mocks.NewThumbnailRepository()
//		repo.Set(42, "thumbs/42.jpg")
//
//		store := thumbs.NewStore(repo, dir)
//		// ... test store behavior
//	}
//
// # Available Mocks
//
//   - ThumbnailRepository: implements ports.ThumbnailRepository
package mocks
