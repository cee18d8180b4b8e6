package catalog

const (
	categoryHR         = "الموارد البشرية"
	categoryClients    = "العملاء والمبيعات"
	categoryVouchers   = "السندات المالية"
	categoryFleet      = "إدارة الأسطول"
	categoryEcommerce  = "التجارة الإلكترونية"
	categoryShipping   = "الشحن"
	categoryCommission = "العمولات"
	categoryAccounting = "المحاسبة"
	categoryAccounts   = "الحسابات"
	categoryOther      = "أخرى"
)

var defaultDefinitions = []FeatureDefinition{
	{Key: "admin_requests", DisplayName: "طلبات تسجيل المنشآت", Scope: ScopeAdmin},
	{Key: "admin_create_company", DisplayName: "إضافة منشأة جديدة", Scope: ScopeAdmin},
	{Key: "admin_generate_token", DisplayName: "توليد رمز الاشتراك", Scope: ScopeAdmin},
	{Key: "admin_search_token", DisplayName: "البحث عن رمز الاشتراك", Scope: ScopeAdmin},
	{Key: "admin_notifications", DisplayName: "إشعارات المدير", Scope: ScopeAdmin},
	{Key: "admin_chat", DisplayName: "الدعم الفني", Scope: ScopeAdmin},
	{Key: "special_salaries", DisplayName: "مسيرات رواتب خاص", Scope: ScopeAdmin},

	{Key: "hr_module", DisplayName: "الموارد البشرية", Scope: ScopeGeneral, Category: categoryHR},
	{Key: "employees_module", DisplayName: "إدارة الموارد البشرية", Scope: ScopeGeneral, Category: categoryHR},
	{Key: "salary_payrolls_module", DisplayName: "مسيرات الرواتب", Scope: ScopeGeneral, Category: categoryHR},

	{Key: "clients_module", DisplayName: "قائمة العملاء", Scope: ScopeGeneral, Category: categoryClients},

	{Key: "receipts_module", DisplayName: "السندات المالية", Scope: ScopeGeneral, Category: categoryVouchers},
	{Key: "quotations_module", DisplayName: "عروض الأسعار", Scope: ScopeGeneral, Category: categoryVouchers},
	{Key: "sales_module", DisplayName: "الفواتير الضريبية", Scope: ScopeGeneral, Category: categoryVouchers},
	{Key: "income_module", DisplayName: "إضافة دخل جديد", Scope: ScopeGeneral, Category: categoryVouchers},
	{Key: "credit_notes_module", DisplayName: "إشعارات الدائن الضريبية", Scope: ScopeGeneral, Category: categoryVouchers},
	{Key: "receipt_vouchers_module", DisplayName: "سندات القبض", Scope: ScopeGeneral, Category: categoryVouchers},

	{Key: "vehicles_list", DisplayName: "إدارة المركبات", Scope: ScopeGeneral, Category: categoryFleet},

	{Key: "ecommerce_orders_module", DisplayName: "طلبات التجارة الإلكترونية", Scope: ScopeGeneral, Category: categoryEcommerce},
	{Key: "daily_orders_module", DisplayName: "عرض الطلبات اليومية", Scope: ScopeGeneral, Category: categoryEcommerce},
	{Key: "ecommerce_stores_module", DisplayName: "إدارة المتاجر", Scope: ScopeGeneral, Category: categoryEcommerce},

	{Key: "personal_shipments_module", DisplayName: "شحنات الأفراد", Scope: ScopeGeneral, Category: categoryShipping},
	{Key: "manage_shipments_module", DisplayName: "إدارة شحنات الأفراد", Scope: ScopeGeneral, Category: categoryShipping},

	{Key: "monthly_commissions_module", DisplayName: "العمولة الشهرية", Scope: ScopeGeneral, Category: categoryCommission},
	{Key: "commissions_summary_module", DisplayName: "تقرير العمولة الشهرية", Scope: ScopeGeneral, Category: categoryCommission},

	{Key: "expenses_module", DisplayName: "المصروفات الشهرية", Scope: ScopeGeneral, Category: categoryAccounting},
	{Key: "journal_entries_module", DisplayName: "قيود اليومية", Scope: ScopeGeneral, Category: categoryAccounting},
	{Key: "income_report_module", DisplayName: "عرض الدخل والتقارير", Scope: ScopeGeneral, Category: categoryAccounting},
	{Key: "expenses_report_module", DisplayName: "تقرير المصروفات", Scope: ScopeGeneral, Category: categoryAccounting},

	{Key: "accounts_module", DisplayName: "مركز الحسابات", Scope: ScopeGeneral, Category: categoryAccounts},
	{Key: "cost_centers_module", DisplayName: "مراكز التكلفة", Scope: ScopeGeneral, Category: categoryAccounts},
	{Key: "ledger_module", DisplayName: "دفتر الأستاذ العام", Scope: ScopeGeneral, Category: categoryAccounts},
	{Key: "trial_balance_module", DisplayName: "ميزان المراجعة", Scope: ScopeGeneral, Category: categoryAccounts},
	{Key: "income_statement_module", DisplayName: "قائمة الأرصدة", Scope: ScopeGeneral, Category: categoryAccounts},
	{Key: "balance_sheet_module", DisplayName: "الميزانية العمومية", Scope: ScopeGeneral, Category: categoryAccounts},
	{Key: "tax_settings_module", DisplayName: "إعدادات الضريبة", Scope: ScopeGeneral, Category: categoryAccounts},

	{Key: "chat_module", DisplayName: "الدعم الفني والمحادثات", Scope: ScopeGeneral, Category: categoryOther},
	{Key: "letters_templates_module", DisplayName: "الخطابات الجاهزة", Scope: ScopeGeneral, Category: categoryOther},
}

// Default returns the built-in ZoolSpeed feature catalog.
func Default() *Catalog {
	return MustNew(defaultDefinitions)
}
