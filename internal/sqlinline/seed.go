package sqlinline

const QUpsertCompany = `--sql 7abb61dd-e6c3-44c2-8200-52e9c90b763d
insert into companies(name, default_currency)
values ($1::text, $2::text)
on conflict (name) do update set default_currency = excluded.default_currency;
`

const QUpsertCostCenter = `--sql 60b8010e-bfe3-4258-a8ec-41ae850038cb
insert into cost_centers(name, company, custom_abbreviation, is_group)
values ($1::text, nullif($2::text, ''), nullif($3::text, ''), $4::bool)
on conflict (name) do update set
    company = excluded.company,
    custom_abbreviation = excluded.custom_abbreviation,
    is_group = excluded.is_group;
`

const QUpsertFundClass = `--sql 726fd9e5-9f46-4312-97c3-c68fb86e4451
insert into fund_classes(name, fund_class_name)
values ($1::text, $2::text)
on conflict (name) do update set fund_class_name = excluded.fund_class_name;
`

const QUpsertFundClassDefaults = `--sql 13ef738b-5e61-4a7b-901e-a7e136dafeeb
insert into fund_class_defaults(
  fund_class, company, equity_account, receivable_account, cost_center,
  service_area, subservice_area, product
)
values ($1::text, $2::text, nullif($3::text, ''), nullif($4::text, ''), nullif($5::text, ''),
        nullif($6::text, ''), nullif($7::text, ''), nullif($8::text, ''))
on conflict (fund_class, company) do update set
    equity_account = excluded.equity_account,
    receivable_account = excluded.receivable_account,
    cost_center = excluded.cost_center,
    service_area = excluded.service_area,
    subservice_area = excluded.subservice_area,
    product = excluded.product;
`

const QDeleteDeductionRules = `--sql 3ac817f3-61da-4a3d-8464-3e627faece82
delete from deduction_details
where fund_class = $1::text and company = $2::text;
`

const QInsertDeductionRule = `--sql 10fd3c89-74ba-4812-8d6c-0a544fb0543f
insert into deduction_details(
  name, fund_class, company, account, percentage, min_percent, max_percent, cost_center, project, idx
)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::numeric, $5::numeric, $6::numeric,
        nullif($7::text, ''), nullif($8::text, ''), $9::int);
`
