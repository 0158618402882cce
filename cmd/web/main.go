// @title           BidPilot API
// @version         1.0
// @description     API платформы поиска тендеров и управления откликами (документация Swagger).
// @contact.name    BidPilot Team
// @contact.email   support@bidpilot.com
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1

package main

import "bidpilot_backend/internal/app"

func main() {
	app.Run()
}
