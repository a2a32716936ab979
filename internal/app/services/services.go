package services

// Services defined in this package:
// - IdentityService: student registration, login and credential upgrades
// - ApplicationService: bursary application submission and retrieval
// - OfficerService: officer management and application review
// - GeographyService: county/constituency/ward reference data
// - SiteService: deployment profile and application deadline
