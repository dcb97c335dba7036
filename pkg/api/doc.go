// Package api implements the HTTP surface of the quiz administration
// service: registration and login, token-protected user routes, and the
// admin CRUD endpoints for subjects, chapters, quizzes, and questions.
//
// Authorization is evaluated once per route subtree by the middleware
// chain rather than inside individual handlers. Uniqueness and
// referential integrity come back from the storage layer as sentinel
// errors and are translated to the wire responses here.
package api
