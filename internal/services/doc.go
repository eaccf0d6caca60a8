// Package services hands the wordsense domain services to the HTTP layer.
//
// The registry exposes each service through a narrow interface so handlers
// can be tested against fakes. Use NewRegistry() with concrete instances,
// then the accessor methods to retrieve them.
package services
