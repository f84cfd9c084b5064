package appfs

import "embed"

// FS holds the SQL migrations, the seed data and the email templates.
//go:embed migrations/*.sql seed/*.yaml templates/email/* assets/*.txt.gz
var FS embed.FS
