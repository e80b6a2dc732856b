package sqlinline

const QListDeductionRules = `--sql 40d30b79-29ac-439d-b91a-00c65d13c06f
select fund_class, company, account, percentage::float8, min_percent::float8, max_percent::float8,
       coalesce(cost_center, ''), coalesce(project, '')
from deduction_details
where fund_class = $1::text and company = $2::text
order by idx asc, account asc;
`

const QSelectDonorStatus = `--sql 0361bba4-8599-4bd0-a467-89ca2af47013
select status
from donors
where name = $1::text;
`

const QSelectFundClassDefaults = `--sql cf01b619-d40d-4f7c-ad59-cf0ce4c4528e
select fund_class, company,
       coalesce(equity_account, ''), coalesce(receivable_account, ''), coalesce(cost_center, ''),
       coalesce(service_area, ''), coalesce(subservice_area, ''), coalesce(product, '')
from fund_class_defaults
where fund_class = $1::text and company = $2::text;
`

const QSelectCompanyCurrency = `--sql bc59549b-013f-47f7-9c61-e29687b6fa06
select default_currency
from companies
where name = $1::text;
`

const QSelectStoredExchangeRate = `--sql 8a2c3123-0d3e-42c8-ba30-1ad9635f5573
select rate
from (
    select exchange_rate::float8 as rate, date
    from currency_exchange
    where from_currency = $1::text and to_currency = $2::text and date <= $3::date
    union all
    select 1 / exchange_rate::float8 as rate, date
    from currency_exchange
    where from_currency = $2::text and to_currency = $1::text and date <= $3::date and exchange_rate <> 0
) candidates
order by date desc
limit 1;
`

const QUpsertExchangeRate = `--sql 4fb817b7-ba29-474b-917e-c6d0df7341bd
insert into currency_exchange(from_currency, to_currency, date, exchange_rate)
values ($1::text, $2::text, $3::date, $4::numeric)
on conflict (from_currency, to_currency, date) do update set exchange_rate = excluded.exchange_rate;
`
