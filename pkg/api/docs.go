// Package api provides the read-only status API of the RWA indexer
// @title RWA Indexer API
// @version 1.0
// @description Status of the RWA event indexer: listener state, checkpoint and tracked contracts
// @contact.name API Support
// @contact.url https://github.com/goran-ethernal/RWAIndexor
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /api/v1
// @schemes http https
package api
