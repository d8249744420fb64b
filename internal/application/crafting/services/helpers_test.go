package services_test

import "time"

var time0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
