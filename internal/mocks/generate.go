// Package mocks provides mock implementations of the marketplace ports for
// service and handler tests.
//
// The mocks are generated with go.uber.org/mock (gomock). To regenerate them
// after an interface change, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockResourceClient(ctrl)
//	client.EXPECT().List(gomock.Any(), "orders", gomock.Any()).Return(col, nil)
package mocks

// Generate mocks for the marketplace ports:
// TokenProvider, ResourceClient, MarketplaceAPI, AuditRecorder, AuditReader
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=marketplace_mock.go github.com/urbanmart/marketplace-admin/internal/ports TokenProvider,ResourceClient,MarketplaceAPI,AuditRecorder,AuditReader

// Generate mocks for the sign-in ports:
// AuthProvider, SessionStore, RoleMapper
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_mock.go github.com/urbanmart/marketplace-admin/internal/ports AuthProvider,SessionStore,RoleMapper
